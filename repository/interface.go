package repository

import (
	"context"

	"dressing-virtuel/models"
)

// TaxonomyRepositoryInterface defines the contract for reading controlled vocabularies
type TaxonomyRepositoryInterface interface {
	GetCategories(ctx context.Context, axis models.Axis) ([]models.TaxonomyEntry, error)
}

// ClientRepositoryInterface defines the contract for client identity operations
type ClientRepositoryInterface interface {
	// GetReferenceFace returns nil, nil when the client has no stored face
	GetReferenceFace(ctx context.Context, clientID int) ([]byte, error)
	UpdateReferenceFace(ctx context.Context, clientID int, face []byte) error
}

// GarmentRepositoryInterface defines the contract for catalogue garment operations
type GarmentRepositoryInterface interface {
	Create(ctx context.Context, garment *models.Garment) error
	GetByClient(ctx context.Context, clientID int) ([]models.GarmentDetail, error)
	GetByID(ctx context.Context, clientID, garmentID int) (*models.GarmentDetail, error)
}
