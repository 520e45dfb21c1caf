package service

import (
	"context"

	"dressing-virtuel/models"
)

// The capability interfaces below wrap the models API. An empty result means
// "nothing found" and is never an error; an error means the call itself failed.

// PersonDetector finds people in a photo
type PersonDetector interface {
	DetectPersons(ctx context.Context, image []byte) ([]models.ImageCrop, error)
}

// IdentityMatcher checks a candidate image against the client's reference face.
// It returns the candidate itself on a match and nil otherwise.
type IdentityMatcher interface {
	MatchIdentity(ctx context.Context, referenceFace, candidate []byte) (models.ImageCrop, error)
}

// GarmentSegmenter cuts a person crop into garment crops
type GarmentSegmenter interface {
	SegmentGarments(ctx context.Context, person []byte) ([]models.ImageCrop, error)
}

// AttributeClassifier picks the best label per axis for a garment crop
type AttributeClassifier interface {
	ClassifyAttributes(ctx context.Context, vocabulary models.Vocabulary, garment []byte) (models.Classification, error)
}

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ListImages(ctx context.Context, folderID string) ([]models.DriveImage, error)
	DownloadImage(ctx context.Context, fileID string) ([]byte, error)
}

// WeatherProvider returns the forecast temperature at noon for a place and day
type WeatherProvider interface {
	NoonTemperature(ctx context.Context, latitude, longitude float64, date string) (float64, error)
}
