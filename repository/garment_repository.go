package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dressing-virtuel/db"
	"dressing-virtuel/logging"
	"dressing-virtuel/models"
	"dressing-virtuel/utils"
)

// ErrGarmentNotFound is returned when a garment does not exist for the client
var ErrGarmentNotFound = errors.New("garment not found")

// GarmentRepository handles database operations for catalogue garments
type GarmentRepository struct{}

// NewGarmentRepository creates a new GarmentRepository
func NewGarmentRepository() *GarmentRepository {
	return &GarmentRepository{}
}

// Ensure GarmentRepository implements GarmentRepositoryInterface
var _ GarmentRepositoryInterface = (*GarmentRepository)(nil)

const garmentDetailSelect = `
	SELECT ip.id, ip.path, ip.id_client,
		g.gender, c.name, COALESCE(c.rgb, ''), s.name,
		at.name, pc.name, psc.name, ut.name
	FROM tb_imageproduct ip
	JOIN tb_gender g ON g.id = ip.id_gender
	JOIN tb_colors c ON c.id = ip.id_color
	JOIN tb_seasons s ON s.id = ip.id_season
	JOIN tb_usagetype ut ON ut.id = ip.id_usagetype
	JOIN tb_articletype at ON at.id = ip.id_articletype
	JOIN tb_productsubcategories psc ON psc.id = at.id_subcategory
	JOIN tb_productcategories pc ON pc.id = psc.id_category
`

// Create inserts a garment and sets its generated id
func (r *GarmentRepository) Create(ctx context.Context, garment *models.Garment) error {
	query := `
		INSERT INTO tb_imageproduct (path, id_client, id_gender, id_season, id_color, id_usagetype, id_articletype)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := db.DB.QueryRowContext(ctx, query,
		garment.Path,
		garment.ClientID,
		garment.GenderID,
		garment.SeasonID,
		garment.ColorID,
		garment.UsageTypeID,
		garment.ArticleTypeID,
	).Scan(&garment.ID)
	if err != nil {
		logging.Error().Err(err).Str("path", garment.Path).Msg("❌ Error inserting garment")
		return fmt.Errorf("failed to insert garment: %w", err)
	}

	logging.Info().Int("id", garment.ID).Int("client_id", garment.ClientID).Msg("💾 Garment stored")
	return nil
}

// GetByClient returns the client's catalogue joined with taxonomy names.
// Rows whose color has an unreadable rgb value are skipped.
func (r *GarmentRepository) GetByClient(ctx context.Context, clientID int) ([]models.GarmentDetail, error) {
	query := garmentDetailSelect + ` WHERE ip.id_client = $1 ORDER BY ip.id`

	rows, err := db.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		logging.Error().Err(err).Int("client_id", clientID).Msg("❌ Error querying garments")
		return nil, fmt.Errorf("failed to query garments: %w", err)
	}
	defer rows.Close()

	garments := make([]models.GarmentDetail, 0)
	for rows.Next() {
		detail, rgb, err := scanGarmentDetail(rows)
		if err != nil {
			return nil, err
		}
		if !applyColor(&detail, rgb, "⚠️  Skipping garment with invalid color") {
			continue
		}
		garments = append(garments, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating garments: %w", err)
	}

	return garments, nil
}

// GetByID returns one garment of the client
func (r *GarmentRepository) GetByID(ctx context.Context, clientID, garmentID int) (*models.GarmentDetail, error) {
	query := garmentDetailSelect + ` WHERE ip.id_client = $1 AND ip.id = $2`

	detail, rgb, err := scanGarmentDetail(db.DB.QueryRowContext(ctx, query, clientID, garmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGarmentNotFound
		}
		return nil, err
	}
	applyColor(&detail, rgb, "⚠️  Garment has an invalid color, color left unset")
	return &detail, nil
}

// applyColor parses the stored rgb string into detail. A bad value is logged
// at warn level with msg and reported as false.
func applyColor(detail *models.GarmentDetail, rgb, msg string) bool {
	color, err := utils.ParseRGB(rgb)
	if err != nil {
		logging.Warn().Err(err).Int("id", detail.ID).Str("rgb", rgb).Msg(msg)
		return false
	}
	detail.ColorRGB = color
	return true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGarmentDetail(row rowScanner) (models.GarmentDetail, string, error) {
	var d models.GarmentDetail
	var rgb string
	err := row.Scan(
		&d.ID,
		&d.Path,
		&d.ClientID,
		&d.Gender,
		&d.Color,
		&rgb,
		&d.Season,
		&d.ArticleType,
		&d.Category,
		&d.SubCategory,
		&d.UsageType,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, "", err
		}
		return d, "", fmt.Errorf("failed to scan garment: %w", err)
	}
	return d, rgb, nil
}
