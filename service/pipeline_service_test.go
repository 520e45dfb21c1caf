package service

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"dressing-virtuel/metrics"
	"dressing-virtuel/models"
)

type pipelineFixture struct {
	taxonomy *fakeTaxonomyLoader
	clients  *fakeClients
	garments *fakeGarments
	images   *fakeImages
	models   *fakeModels
	service  *PipelineService
}

func newPipelineFixture(m *fakeModels) *pipelineFixture {
	f := &pipelineFixture{
		taxonomy: &fakeTaxonomyLoader{taxonomy: testTaxonomy()},
		clients:  &fakeClients{face: []byte("face-42")},
		garments: &fakeGarments{},
		images:   &fakeImages{},
		models:   m,
	}
	f.service = NewPipelineService(PipelineDeps{
		Taxonomy:   f.taxonomy,
		Clients:    f.clients,
		Garments:   f.garments,
		Images:     f.images,
		Detector:   m,
		Matcher:    m,
		Segmenter:  m,
		Classifier: m,
	})
	return f
}

func assertRemoved(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("temp image %s still exists", p)
		}
	}
}

func TestIdentifyClothesIsolatesImageFailures(t *testing.T) {
	m := &fakeModels{
		detectErr: map[string]error{"photo-a": errUnavailable},
		persons:   map[string][]string{"photo-b": {"person-b"}},
		garments:  map[string][]string{"person-b": {"top-b", "bottom-b"}},
		labels: map[string]models.Classification{
			"top-b":    labels("Red", "Tshirts"),
			"bottom-b": labels("Cyan", "Jeans"),
		},
	}
	f := newPipelineFixture(m)
	paths := writeImages(t, "photo-a", "photo-b")
	persistedBefore := testutil.ToFloat64(metrics.GarmentsPersisted)
	detectFailedBefore := testutil.ToFloat64(metrics.PipelineUnits.WithLabelValues("detection", "failed"))

	report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ID: "s1", ClientID: 42, ImagePaths: paths})
	if err != nil {
		t.Fatalf("IdentifyClothes() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.GarmentsPersisted) - persistedBefore; got != 2 {
		t.Errorf("garments persisted metric grew by %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.PipelineUnits.WithLabelValues("detection", "failed")) - detectFailedBefore; got != 1 {
		t.Errorf("detection failures metric grew by %v, want 1", got)
	}

	if !report.Success {
		t.Error("report.Success = false, want true")
	}
	if report.Images != 2 || report.ImagesSkipped != 1 {
		t.Errorf("images = %d skipped = %d, want 2 and 1", report.Images, report.ImagesSkipped)
	}
	if report.GarmentsPersisted != 2 || len(f.garments.created) != 2 {
		t.Fatalf("persisted = %d (created %d), want 2", report.GarmentsPersisted, len(f.garments.created))
	}

	top := f.garments.created[0]
	want := models.Garment{ID: 1, Path: "wardrobe/42/top-b.jpg", ClientID: 42, GenderID: 2, SeasonID: 1, ColorID: 1, UsageTypeID: 1, ArticleTypeID: 1}
	if top != want {
		t.Errorf("first garment = %+v, want %+v", top, want)
	}
	if f.garments.created[1].ColorID != 2 || f.garments.created[1].ArticleTypeID != 2 {
		t.Errorf("second garment = %+v, want cyan jeans", f.garments.created[1])
	}

	assertRemoved(t, paths...)
}

func TestIdentifyClothesPersistsOnlyCompleteClassifications(t *testing.T) {
	partial := labels("Red", "Tshirts")
	delete(partial, models.AxisColor)

	m := &fakeModels{
		persons:  map[string][]string{"photo": {"person"}},
		garments: map[string][]string{"person": {"complete", "partial", "unknown", "broken", "empty"}},
		labels: map[string]models.Classification{
			"complete": labels("Red", "Tshirts"),
			"partial":  partial,
			"unknown":  labels("Mauve", "Tshirts"),
		},
		classifyErr: map[string]error{"broken": errUnavailable},
	}
	f := newPipelineFixture(m)

	report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ID: "s2", ClientID: 42, ImagePaths: writeImages(t, "photo")})
	if err != nil {
		t.Fatalf("IdentifyClothes() error = %v", err)
	}

	if len(f.garments.created) != 1 || f.garments.created[0].Path != "wardrobe/42/complete.jpg" {
		t.Fatalf("created = %+v, want only the complete garment", f.garments.created)
	}
	if report.Garments != 5 || report.GarmentsSkipped != 4 || report.GarmentsPersisted != 1 {
		t.Errorf("report = %+v", report)
	}
	if !reflect.DeepEqual(f.images.saved, []string{"wardrobe/42/complete.jpg"}) {
		t.Errorf("saved images = %v, want only the complete garment", f.images.saved)
	}
}

func TestIdentifyClothesSkipsStrangersAndUnsegmentedPersons(t *testing.T) {
	m := &fakeModels{
		persons:    map[string][]string{"photo": {"stranger", "blurry", "no-seg", "bare", "client"}},
		strangers:  map[string]bool{"stranger": true},
		matchErr:   map[string]error{"blurry": errUnavailable},
		segmentErr: map[string]error{"no-seg": errUnavailable},
		garments:   map[string][]string{"client": {"shirt"}},
		labels:     map[string]models.Classification{"shirt": labels("Red", "Tshirts")},
	}
	f := newPipelineFixture(m)

	report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ID: "s3", ClientID: 42, ImagePaths: writeImages(t, "photo")})
	if err != nil {
		t.Fatalf("IdentifyClothes() error = %v", err)
	}

	if report.Persons != 5 || report.PersonsUnmatched != 2 || report.PersonsUnsegmented != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(f.garments.created) != 1 {
		t.Errorf("created %d garments, want 1", len(f.garments.created))
	}
	for _, face := range m.facesPassed {
		if face != "face-42" {
			t.Errorf("identity matched against %q, want the client's reference face", face)
		}
	}
}

func TestIdentifyClothesSendsFullVocabulary(t *testing.T) {
	m := &fakeModels{
		persons:  map[string][]string{"photo": {"person"}},
		garments: map[string][]string{"person": {"shirt"}},
		labels:   map[string]models.Classification{"shirt": labels("Red", "Tshirts")},
	}
	f := newPipelineFixture(m)

	if _, err := f.service.IdentifyClothes(context.Background(), models.Submission{ClientID: 42, ImagePaths: writeImages(t, "photo")}); err != nil {
		t.Fatal(err)
	}

	if got := m.vocabulary[models.AxisColor]; !reflect.DeepEqual(got, []string{"Red", "Cyan"}) {
		t.Errorf("color vocabulary = %v", got)
	}
	if len(m.vocabulary) != len(models.Axes) {
		t.Errorf("vocabulary has %d axes, want %d", len(m.vocabulary), len(models.Axes))
	}
}

func TestIdentifyClothesFatalPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *pipelineFixture)
		wantErr error
	}{
		{
			name:    "taxonomy unreachable",
			setup:   func(f *pipelineFixture) { f.taxonomy.err = errUnavailable },
			wantErr: ErrTaxonomyUnavailable,
		},
		{
			name:    "no reference face",
			setup:   func(f *pipelineFixture) { f.clients.face = nil },
			wantErr: ErrReferenceFaceMissing,
		},
		{
			name:    "reference face lookup fails",
			setup:   func(f *pipelineFixture) { f.clients.err = errUnavailable },
			wantErr: ErrReferenceFaceMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeModels{persons: map[string][]string{"photo": {"person"}}}
			f := newPipelineFixture(m)
			tt.setup(f)
			paths := writeImages(t, "photo")

			report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ClientID: 42, ImagePaths: paths})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("IdentifyClothes() error = %v, want %v", err, tt.wantErr)
			}
			if report != nil {
				t.Errorf("report = %+v, want nil", report)
			}
			if len(m.detected) != 0 {
				t.Errorf("detection ran on %d images after a fatal precondition", len(m.detected))
			}
			if _, err := os.Stat(paths[0]); err != nil {
				t.Errorf("image was touched: %v", err)
			}
		})
	}
}

func TestIdentifyClothesRemovesImageWhenStoreFails(t *testing.T) {
	m := &fakeModels{
		persons:  map[string][]string{"photo": {"person"}},
		garments: map[string][]string{"person": {"shirt"}},
		labels:   map[string]models.Classification{"shirt": labels("Red", "Tshirts")},
	}
	f := newPipelineFixture(m)
	f.garments.createErr = errUnavailable

	report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ClientID: 42, ImagePaths: writeImages(t, "photo")})
	if err != nil {
		t.Fatalf("IdentifyClothes() error = %v", err)
	}
	if report.GarmentsPersisted != 0 || report.GarmentsSkipped != 1 {
		t.Errorf("report = %+v", report)
	}
	if !reflect.DeepEqual(f.images.removed, []string{"wardrobe/42/shirt.jpg"}) {
		t.Errorf("removed = %v, want the orphan garment image", f.images.removed)
	}
}

func TestIdentifyClothesSkipsUnreadableImage(t *testing.T) {
	m := &fakeModels{}
	f := newPipelineFixture(m)

	report, err := f.service.IdentifyClothes(context.Background(), models.Submission{ClientID: 42, ImagePaths: []string{"/nonexistent/photo.jpg"}})
	if err != nil {
		t.Fatalf("IdentifyClothes() error = %v", err)
	}
	if report.ImagesSkipped != 1 || len(m.detected) != 0 {
		t.Errorf("report = %+v, detected = %v", report, m.detected)
	}
}
