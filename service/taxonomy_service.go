package service

import (
	"context"
	"fmt"

	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

// TaxonomyService loads the controlled vocabularies
type TaxonomyService struct {
	repository repository.TaxonomyRepositoryInterface
}

// NewTaxonomyService creates a new TaxonomyService
func NewTaxonomyService(repo repository.TaxonomyRepositoryInterface) *TaxonomyService {
	return &TaxonomyService{repository: repo}
}

// LoadTaxonomy reads all five vocabularies. Nothing is cached: every call
// hits the store. An empty vocabulary is an error since no garment could
// ever resolve on that axis.
func (s *TaxonomyService) LoadTaxonomy(ctx context.Context) (*models.Taxonomy, error) {
	vocabularies := make(map[models.Axis][]models.TaxonomyEntry, len(models.Axes))
	for _, axis := range models.Axes {
		entries, err := s.repository.GetCategories(ctx, axis)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", axis, err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("vocabulary %s is empty", axis)
		}
		vocabularies[axis] = entries
	}
	return models.NewTaxonomy(vocabularies), nil
}
