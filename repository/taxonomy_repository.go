package repository

import (
	"context"
	"fmt"

	"dressing-virtuel/db"
	"dressing-virtuel/logging"
	"dressing-virtuel/models"
)

// TaxonomyRepository handles database operations for the controlled vocabularies
type TaxonomyRepository struct{}

// NewTaxonomyRepository creates a new TaxonomyRepository
func NewTaxonomyRepository() *TaxonomyRepository {
	return &TaxonomyRepository{}
}

// Ensure TaxonomyRepository implements TaxonomyRepositoryInterface
var _ TaxonomyRepositoryInterface = (*TaxonomyRepository)(nil)

// taxonomyQueries selects (id, name) for each axis. Table and column names are
// fixed here and never taken from input.
var taxonomyQueries = map[models.Axis]string{
	models.AxisGender:      `SELECT id, gender FROM tb_gender ORDER BY id`,
	models.AxisSeason:      `SELECT id, name FROM tb_seasons ORDER BY id`,
	models.AxisColor:       `SELECT id, name FROM tb_colors ORDER BY id`,
	models.AxisUsageType:   `SELECT id, name FROM tb_usagetype ORDER BY id`,
	models.AxisArticleType: `SELECT id, name FROM tb_articletype ORDER BY id`,
}

// GetCategories returns every entry of one vocabulary
func (r *TaxonomyRepository) GetCategories(ctx context.Context, axis models.Axis) ([]models.TaxonomyEntry, error) {
	query, ok := taxonomyQueries[axis]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy axis %q", axis)
	}

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		logging.Error().Err(err).Str("axis", string(axis)).Msg("❌ Error querying taxonomy")
		return nil, fmt.Errorf("failed to query %s: %w", axis, err)
	}
	defer rows.Close()

	var entries []models.TaxonomyEntry
	for rows.Next() {
		var e models.TaxonomyEntry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", axis, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s entries: %w", axis, err)
	}

	logging.Debug().Str("axis", string(axis)).Int("count", len(entries)).Msg("📚 Taxonomy loaded")
	return entries, nil
}
