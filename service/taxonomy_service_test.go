package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dressing-virtuel/models"
)

func fullVocabularies() map[models.Axis][]models.TaxonomyEntry {
	return map[models.Axis][]models.TaxonomyEntry{
		models.AxisGender:      {{ID: 2, Name: "Women"}, {ID: 1, Name: "Men"}},
		models.AxisSeason:      {{ID: 1, Name: "Summer"}},
		models.AxisColor:       {{ID: 1, Name: "Red"}},
		models.AxisUsageType:   {{ID: 1, Name: "Casual"}},
		models.AxisArticleType: {{ID: 1, Name: "Tshirts"}},
	}
}

func TestLoadTaxonomy(t *testing.T) {
	s := NewTaxonomyService(&fakeTaxonomyRepo{entries: fullVocabularies()})

	taxonomy, err := s.LoadTaxonomy(context.Background())
	if err != nil {
		t.Fatalf("LoadTaxonomy() error = %v", err)
	}
	if got := taxonomy.Vocabulary()[models.AxisGender]; len(got) != 2 || got[0] != "Men" {
		t.Errorf("gender vocabulary = %v, want [Men Women]", got)
	}
}

func TestLoadTaxonomyErrors(t *testing.T) {
	empty := fullVocabularies()
	empty[models.AxisColor] = nil

	tests := []struct {
		name    string
		repo    *fakeTaxonomyRepo
		wantErr string
	}{
		{"store down", &fakeTaxonomyRepo{err: errors.New("connection refused")}, "connection refused"},
		{"empty vocabulary", &fakeTaxonomyRepo{entries: empty}, "id_color is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTaxonomyService(tt.repo).LoadTaxonomy(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("LoadTaxonomy() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
