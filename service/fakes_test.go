package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

func testTaxonomy() *models.Taxonomy {
	return models.NewTaxonomy(map[models.Axis][]models.TaxonomyEntry{
		models.AxisGender:      {{ID: 1, Name: "Men"}, {ID: 2, Name: "Women"}},
		models.AxisSeason:      {{ID: 1, Name: "Summer"}, {ID: 2, Name: "Winter"}},
		models.AxisColor:       {{ID: 1, Name: "Red"}, {ID: 2, Name: "Cyan"}},
		models.AxisUsageType:   {{ID: 1, Name: "Casual"}, {ID: 2, Name: "Formal"}},
		models.AxisArticleType: {{ID: 1, Name: "Tshirts"}, {ID: 2, Name: "Jeans"}},
	})
}

func labels(color, article string) models.Classification {
	return models.Classification{
		models.AxisGender:      "Women",
		models.AxisSeason:      "Summer",
		models.AxisColor:       color,
		models.AxisUsageType:   "Casual",
		models.AxisArticleType: article,
	}
}

// writeImages creates temp files whose content identifies them to fakeModels
func writeImages(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(contents))
	for i, c := range contents {
		paths[i] = filepath.Join(dir, fmt.Sprintf("upload_%d.jpg", i))
		if err := os.WriteFile(paths[i], []byte(c), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

type fakeTaxonomyLoader struct {
	taxonomy *models.Taxonomy
	err      error
	calls    int
}

func (f *fakeTaxonomyLoader) LoadTaxonomy(ctx context.Context) (*models.Taxonomy, error) {
	f.calls++
	return f.taxonomy, f.err
}

type fakeTaxonomyRepo struct {
	entries map[models.Axis][]models.TaxonomyEntry
	err     error
}

var _ repository.TaxonomyRepositoryInterface = (*fakeTaxonomyRepo)(nil)

func (f *fakeTaxonomyRepo) GetCategories(ctx context.Context, axis models.Axis) ([]models.TaxonomyEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[axis], nil
}

type fakeClients struct {
	face []byte
	err  error
}

var _ repository.ClientRepositoryInterface = (*fakeClients)(nil)

func (f *fakeClients) GetReferenceFace(ctx context.Context, clientID int) ([]byte, error) {
	return f.face, f.err
}

func (f *fakeClients) UpdateReferenceFace(ctx context.Context, clientID int, face []byte) error {
	f.face = face
	return nil
}

type fakeGarments struct {
	mu         sync.Mutex
	created    []models.Garment
	createErr  error
	catalogue  []models.GarmentDetail
	catalogErr error
}

var _ repository.GarmentRepositoryInterface = (*fakeGarments)(nil)

func (f *fakeGarments) Create(ctx context.Context, g *models.Garment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	g.ID = len(f.created) + 1
	f.created = append(f.created, *g)
	return nil
}

func (f *fakeGarments) GetByClient(ctx context.Context, clientID int) ([]models.GarmentDetail, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	var out []models.GarmentDetail
	for _, g := range f.catalogue {
		if g.ClientID == clientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGarments) GetByID(ctx context.Context, clientID, garmentID int) (*models.GarmentDetail, error) {
	for _, g := range f.catalogue {
		if g.ClientID == clientID && g.ID == garmentID {
			return &g, nil
		}
	}
	return nil, repository.ErrGarmentNotFound
}

type fakeImages struct {
	saved   []string
	removed []string
	err     error
}

func (f *fakeImages) SaveGarment(clientID int, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := fmt.Sprintf("wardrobe/%d/%s.jpg", clientID, data)
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImages) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

// fakeModels answers capability calls from tables keyed by the payload content
type fakeModels struct {
	persons     map[string][]string
	detectErr   map[string]error
	strangers   map[string]bool
	matchErr    map[string]error
	garments    map[string][]string
	segmentErr  map[string]error
	labels      map[string]models.Classification
	classifyErr map[string]error

	detected    []string
	vocabulary  models.Vocabulary
	facesPassed []string
}

func crops(names []string) []models.ImageCrop {
	out := make([]models.ImageCrop, len(names))
	for i, n := range names {
		out[i] = models.ImageCrop(n)
	}
	return out
}

func (f *fakeModels) DetectPersons(ctx context.Context, image []byte) ([]models.ImageCrop, error) {
	f.detected = append(f.detected, string(image))
	if err := f.detectErr[string(image)]; err != nil {
		return nil, err
	}
	return crops(f.persons[string(image)]), nil
}

func (f *fakeModels) MatchIdentity(ctx context.Context, referenceFace, candidate []byte) (models.ImageCrop, error) {
	f.facesPassed = append(f.facesPassed, string(referenceFace))
	if err := f.matchErr[string(candidate)]; err != nil {
		return nil, err
	}
	if f.strangers[string(candidate)] {
		return nil, nil
	}
	return models.ImageCrop(candidate), nil
}

func (f *fakeModels) SegmentGarments(ctx context.Context, person []byte) ([]models.ImageCrop, error) {
	if err := f.segmentErr[string(person)]; err != nil {
		return nil, err
	}
	return crops(f.garments[string(person)]), nil
}

func (f *fakeModels) ClassifyAttributes(ctx context.Context, vocabulary models.Vocabulary, garment []byte) (models.Classification, error) {
	f.vocabulary = vocabulary
	if err := f.classifyErr[string(garment)]; err != nil {
		return nil, err
	}
	return f.labels[string(garment)], nil
}

var errUnavailable = errors.New("service unavailable")
