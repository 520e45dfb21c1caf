package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"dressing-virtuel/logging"
	"dressing-virtuel/metrics"
	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

var (
	// ErrTaxonomyUnavailable aborts a submission before any image is read
	ErrTaxonomyUnavailable = errors.New("taxonomy unavailable")
	// ErrReferenceFaceMissing aborts a submission when the client has no usable reference face
	ErrReferenceFaceMissing = errors.New("client has no reference face")
)

// TaxonomyLoader loads the controlled vocabularies
type TaxonomyLoader interface {
	LoadTaxonomy(ctx context.Context) (*models.Taxonomy, error)
}

// GarmentImageStore persists garment crops
type GarmentImageStore interface {
	SaveGarment(clientID int, data []byte) (string, error)
	Remove(path string) error
}

// PipelineDeps groups the collaborators of a PipelineService
type PipelineDeps struct {
	Taxonomy   TaxonomyLoader
	Clients    repository.ClientRepositoryInterface
	Garments   repository.GarmentRepositoryInterface
	Images     GarmentImageStore
	Detector   PersonDetector
	Matcher    IdentityMatcher
	Segmenter  GarmentSegmenter
	Classifier AttributeClassifier
}

// PipelineService turns submitted photos into catalogue garments.
// A submission is processed strictly in order: image, then person, then garment.
type PipelineService struct {
	deps PipelineDeps
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(deps PipelineDeps) *PipelineService {
	return &PipelineService{deps: deps}
}

// run carries the per-submission state
type run struct {
	submission models.Submission
	taxonomy   *models.Taxonomy
	vocabulary models.Vocabulary
	face       []byte
	report     *models.SubmissionReport
}

// IdentifyClothes processes one submission. Only a missing taxonomy or a
// missing reference face fail the call; every other failure skips the
// smallest unit involved and is counted in the report. Each image's temp
// file is removed once that image is done.
func (s *PipelineService) IdentifyClothes(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error) {
	log := logging.Logger().With().Str("submission", submission.ID).Int("client_id", submission.ClientID).Logger()
	log.Info().Int("images", len(submission.ImagePaths)).Msg("🚀 Starting clothes identification")

	taxonomy, err := s.deps.Taxonomy.LoadTaxonomy(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Could not load taxonomy, aborting submission")
		metrics.Submissions.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTaxonomyUnavailable, err)
	}

	face, err := s.deps.Clients.GetReferenceFace(ctx, submission.ClientID)
	if err != nil {
		log.Error().Err(err).Msg("❌ Could not load reference face, aborting submission")
		metrics.Submissions.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("%w: %v", ErrReferenceFaceMissing, err)
	}
	if len(face) == 0 {
		log.Error().Msg("❌ Client has no reference face, aborting submission")
		metrics.Submissions.WithLabelValues("aborted").Inc()
		return nil, ErrReferenceFaceMissing
	}

	r := &run{
		submission: submission,
		taxonomy:   taxonomy,
		vocabulary: taxonomy.Vocabulary(),
		face:       face,
		report: &models.SubmissionReport{
			SubmissionID: submission.ID,
			ClientID:     submission.ClientID,
			Success:      true,
		},
	}

	for _, path := range submission.ImagePaths {
		s.processImage(ctx, r, path)
	}

	metrics.Submissions.WithLabelValues("completed").Inc()
	log.Info().
		Int("images", r.report.Images).
		Int("images_skipped", r.report.ImagesSkipped).
		Int("persons", r.report.Persons).
		Int("garments", r.report.Garments).
		Int("garments_persisted", r.report.GarmentsPersisted).
		Msg("🎉 Clothes identification completed")
	return r.report, nil
}

func (s *PipelineService) processImage(ctx context.Context, r *run, path string) {
	r.report.Images++
	defer removeTempFile(path)

	log := logging.Logger().With().Str("submission", r.submission.ID).Str("image", filepath.Base(path)).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Could not read image, skipping")
		r.report.ImagesSkipped++
		metrics.PipelineUnits.WithLabelValues("image", "unreadable").Inc()
		return
	}

	persons, err := s.deps.Detector.DetectPersons(ctx, data)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Person detection failed, skipping image")
		r.report.ImagesSkipped++
		metrics.PipelineUnits.WithLabelValues("detection", "failed").Inc()
		return
	}
	if len(persons) == 0 {
		log.Warn().Msg("⚠️  No person detected, skipping image")
		r.report.ImagesSkipped++
		metrics.PipelineUnits.WithLabelValues("detection", "empty").Inc()
		return
	}
	metrics.PipelineUnits.WithLabelValues("detection", "ok").Inc()

	for i, person := range persons {
		r.report.Persons++
		s.processPerson(ctx, r, log.With().Int("person", i).Logger(), person)
	}
}

func (s *PipelineService) processPerson(ctx context.Context, r *run, log zerolog.Logger, person models.ImageCrop) {
	matched, err := s.deps.Matcher.MatchIdentity(ctx, r.face, person)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Identity match failed, skipping person")
		r.report.PersonsUnmatched++
		metrics.PipelineUnits.WithLabelValues("identity", "failed").Inc()
		return
	}
	if len(matched) == 0 {
		log.Warn().Msg("⚠️  Person is not the client, skipping")
		r.report.PersonsUnmatched++
		metrics.PipelineUnits.WithLabelValues("identity", "empty").Inc()
		return
	}
	metrics.PipelineUnits.WithLabelValues("identity", "ok").Inc()

	garments, err := s.deps.Segmenter.SegmentGarments(ctx, matched)
	if err != nil {
		log.Error().Err(err).Msg("❌ Garment segmentation failed, skipping person")
		r.report.PersonsUnsegmented++
		metrics.PipelineUnits.WithLabelValues("segmentation", "failed").Inc()
		return
	}
	if len(garments) == 0 {
		log.Error().Msg("❌ No garment segmented, skipping person")
		r.report.PersonsUnsegmented++
		metrics.PipelineUnits.WithLabelValues("segmentation", "empty").Inc()
		return
	}
	metrics.PipelineUnits.WithLabelValues("segmentation", "ok").Inc()

	for i, garment := range garments {
		r.report.Garments++
		if s.persistGarment(ctx, r, log.With().Int("garment", i).Logger(), garment) {
			r.report.GarmentsPersisted++
		} else {
			r.report.GarmentsSkipped++
		}
	}
}

// persistGarment classifies one crop and writes it. Nothing is written unless
// every axis resolves to a taxonomy id.
func (s *PipelineService) persistGarment(ctx context.Context, r *run, log zerolog.Logger, crop models.ImageCrop) bool {
	classification, err := s.deps.Classifier.ClassifyAttributes(ctx, r.vocabulary, crop)
	if err != nil {
		log.Error().Err(err).Msg("❌ Classification failed, skipping garment")
		metrics.PipelineUnits.WithLabelValues("classification", "failed").Inc()
		return false
	}

	garment, err := r.taxonomy.Resolve(classification)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Incomplete classification, skipping garment")
		metrics.PipelineUnits.WithLabelValues("classification", "incomplete").Inc()
		return false
	}
	metrics.PipelineUnits.WithLabelValues("classification", "ok").Inc()

	path, err := s.deps.Images.SaveGarment(r.submission.ClientID, crop)
	if err != nil {
		log.Error().Err(err).Msg("❌ Could not save garment image, skipping garment")
		metrics.PipelineUnits.WithLabelValues("persistence", "image_failed").Inc()
		return false
	}

	garment.Path = path
	garment.ClientID = r.submission.ClientID
	if err := s.deps.Garments.Create(ctx, garment); err != nil {
		log.Error().Err(err).Msg("❌ Could not store garment, skipping garment")
		metrics.PipelineUnits.WithLabelValues("persistence", "failed").Inc()
		if rmErr := s.deps.Images.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Msg("⚠️  Could not remove orphan garment image")
		}
		return false
	}

	metrics.PipelineUnits.WithLabelValues("persistence", "ok").Inc()
	metrics.GarmentsPersisted.Inc()
	log.Info().Int("garment_id", garment.ID).Str("path", path).Msg("✅ Garment added to catalogue")
	return true
}

func removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("path", path).Msg("⚠️  Could not remove temp image")
	}
}
