package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

// TaxonomyLoader loads the controlled vocabularies
type TaxonomyLoader interface {
	LoadTaxonomy(ctx context.Context) (*models.Taxonomy, error)
}

// ImageOptimizer serves resized garment images
type ImageOptimizer interface {
	Optimized(garmentID int, path, size string) ([]byte, error)
}

// GarmentController handles HTTP requests for the catalogue
type GarmentController struct {
	garments repository.GarmentRepositoryInterface
	taxonomy TaxonomyLoader
	images   ImageOptimizer
}

// NewGarmentController creates a new GarmentController
func NewGarmentController(garments repository.GarmentRepositoryInterface, taxonomy TaxonomyLoader, images ImageOptimizer) *GarmentController {
	return &GarmentController{garments: garments, taxonomy: taxonomy, images: images}
}

// ListGarments handles GET /wardrobe/garments?client_id=
func (c *GarmentController) ListGarments(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.Atoi(r.URL.Query().Get("client_id"))
	if err != nil || clientID <= 0 {
		writeBadRequest(w, "client_id must be a positive integer")
		return
	}

	garments, err := c.garments.GetByClient(r.Context(), clientID)
	if err != nil {
		writeError(w, "garments", err)
		return
	}
	for i := range garments {
		garments[i].ImageURL = fmt.Sprintf("/wardrobe/garments/%d/image?client_id=%d", garments[i].ID, clientID)
	}
	writeJSON(w, http.StatusOK, garments)
}

// GetGarmentImage handles GET /wardrobe/garments/{id}/image?client_id=&size=thumb|medium|original
func (c *GarmentController) GetGarmentImage(w http.ResponseWriter, r *http.Request) {
	garmentID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || garmentID <= 0 {
		writeBadRequest(w, "invalid garment id")
		return
	}
	clientID, err := strconv.Atoi(r.URL.Query().Get("client_id"))
	if err != nil || clientID <= 0 {
		writeBadRequest(w, "client_id must be a positive integer")
		return
	}

	size := r.URL.Query().Get("size")
	switch size {
	case "":
		size = "medium"
	case "thumb", "medium", "original":
	default:
		writeBadRequest(w, "size must be thumb, medium or original")
		return
	}

	garment, err := c.garments.GetByID(r.Context(), clientID, garmentID)
	if err != nil {
		writeError(w, "garment_image", err)
		return
	}

	data, err := c.images.Optimized(garment.ID, garment.Path, size)
	if err != nil {
		writeError(w, "garment_image", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetTaxonomy handles GET /wardrobe/taxonomy
func (c *GarmentController) GetTaxonomy(w http.ResponseWriter, r *http.Request) {
	taxonomy, err := c.taxonomy.LoadTaxonomy(r.Context())
	if err != nil {
		writeError(w, "taxonomy", err)
		return
	}
	writeJSON(w, http.StatusOK, taxonomy.All())
}
