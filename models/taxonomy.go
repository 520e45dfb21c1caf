package models

import (
	"fmt"
	"sort"
	"strings"
)

// Axis identifies one classification vocabulary. The values are the wire keys
// used by the classification service and the garment columns they resolve to.
type Axis string

const (
	AxisGender      Axis = "id_gender"
	AxisSeason      Axis = "id_season"
	AxisColor       Axis = "id_color"
	AxisUsageType   Axis = "id_usagetype"
	AxisArticleType Axis = "id_articletype"
)

// Axes lists every axis a garment must be classified on
var Axes = []Axis{AxisGender, AxisSeason, AxisColor, AxisUsageType, AxisArticleType}

// TaxonomyEntry represents a row of a controlled vocabulary
type TaxonomyEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Vocabulary is the label list per axis sent to the classifier
type Vocabulary map[Axis][]string

// Classification is the best label per axis returned by the classifier
type Classification map[Axis]string

// Taxonomy holds the five vocabularies as name -> id maps
type Taxonomy struct {
	entries map[Axis][]TaxonomyEntry
	ids     map[Axis]map[string]int
}

// NewTaxonomy indexes vocabulary entries by name. Entries are kept in id order.
func NewTaxonomy(vocabularies map[Axis][]TaxonomyEntry) *Taxonomy {
	t := &Taxonomy{
		entries: make(map[Axis][]TaxonomyEntry, len(vocabularies)),
		ids:     make(map[Axis]map[string]int, len(vocabularies)),
	}
	for axis, list := range vocabularies {
		sorted := append([]TaxonomyEntry(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

		byName := make(map[string]int, len(sorted))
		for _, e := range sorted {
			byName[e.Name] = e.ID
		}
		t.entries[axis] = sorted
		t.ids[axis] = byName
	}
	return t
}

// Lookup returns the id of a label. Exact names win; otherwise names are
// compared case-insensitively.
func (t *Taxonomy) Lookup(axis Axis, name string) (int, bool) {
	byName, ok := t.ids[axis]
	if !ok {
		return 0, false
	}
	if id, ok := byName[name]; ok {
		return id, true
	}
	trimmed := strings.TrimSpace(name)
	for _, e := range t.entries[axis] {
		if strings.EqualFold(e.Name, trimmed) {
			return e.ID, true
		}
	}
	return 0, false
}

// Entries returns the entries of one axis in id order
func (t *Taxonomy) Entries(axis Axis) []TaxonomyEntry {
	return t.entries[axis]
}

// All returns every vocabulary keyed by axis
func (t *Taxonomy) All() map[Axis][]TaxonomyEntry {
	out := make(map[Axis][]TaxonomyEntry, len(t.entries))
	for axis, list := range t.entries {
		out[axis] = list
	}
	return out
}

// Vocabulary builds the classifier vocabulary, labels in id order
func (t *Taxonomy) Vocabulary() Vocabulary {
	v := make(Vocabulary, len(Axes))
	for _, axis := range Axes {
		labels := make([]string, 0, len(t.entries[axis]))
		for _, e := range t.entries[axis] {
			labels = append(labels, e.Name)
		}
		v[axis] = labels
	}
	return v
}

// Resolve maps a classification onto taxonomy ids. Every axis must be present
// and known; a partial classification is rejected.
func (t *Taxonomy) Resolve(c Classification) (*Garment, error) {
	ids := make(map[Axis]int, len(Axes))
	for _, axis := range Axes {
		label, ok := c[axis]
		if !ok || strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("classification is missing %s", axis)
		}
		id, ok := t.Lookup(axis, label)
		if !ok {
			return nil, fmt.Errorf("unknown %s label %q", axis, label)
		}
		ids[axis] = id
	}

	return &Garment{
		GenderID:      ids[AxisGender],
		SeasonID:      ids[AxisSeason],
		ColorID:       ids[AxisColor],
		UsageTypeID:   ids[AxisUsageType],
		ArticleTypeID: ids[AxisArticleType],
	}, nil
}
