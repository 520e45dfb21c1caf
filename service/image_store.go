package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"

	"dressing-virtuel/logging"
	"dressing-virtuel/utils"
)

const (
	// Quality settings
	qualityGarment = 90
	qualityThumb   = 60
	qualityMedium  = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ImageStore writes garment images under {root}/{client_id}/ and serves
// resized copies from a cache directory
type ImageStore struct {
	root     string
	cacheDir string
}

// NewImageStore creates a new ImageStore
func NewImageStore(root, cacheDir string) *ImageStore {
	return &ImageStore{root: root, cacheDir: cacheDir}
}

// SaveGarment writes a garment crop as JPEG and returns its path.
// Transparent pixels are flattened onto white.
func (s *ImageStore) SaveGarment(clientID int, data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode garment image: %w", err)
	}

	flat := flattenRGB(img)

	dir := filepath.Join(s.root, strconv.Itoa(clientID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create client directory: %w", err)
	}

	path := filepath.Join(dir, utils.GenerateImageName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create garment file: %w", err)
	}
	if err := jpeg.Encode(f, flat, &jpeg.Options{Quality: qualityGarment}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode garment to JPEG: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write garment file: %w", err)
	}

	logging.Debug().Str("path", path).Str("source_format", format).Msg("🖼️  Garment image saved")
	return path, nil
}

// Remove deletes a stored garment image. A missing file is not an error.
func (s *ImageStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Optimized returns a resized JPEG of a stored garment, using the cache when possible.
// size is "thumb", "medium" or "original".
func (s *ImageStore) Optimized(garmentID int, path, size string) ([]byte, error) {
	if size == "original" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read garment image: %w", err)
		}
		return data, nil
	}

	cachePath := filepath.Join(s.cacheDir, fmt.Sprintf("garment_%d_%s.jpg", garmentID, size))
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read garment image: %w", err)
	}
	optimized, err := OptimizeImage(data, size)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		logging.Warn().Err(err).Msg("⚠️  Could not create image cache directory")
		return optimized, nil
	}
	if err := os.WriteFile(cachePath, optimized, 0644); err != nil {
		logging.Warn().Err(err).Str("path", cachePath).Msg("⚠️  Could not cache image")
	}
	return optimized, nil
}

// OptimizeImage converts an image to JPEG fitting within the size's max dimension
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	switch size {
	case "thumb":
		maxDim, quality = maxSizeThumb, qualityThumb
	case "medium":
	default:
		logging.Warn().Str("size", size).Msg("⚠️  Unknown size, defaulting to medium")
	}

	var out image.Image = flattenRGB(img)
	if b := out.Bounds(); b.Dx() > maxDim || b.Dy() > maxDim {
		out = imaging.Fit(out, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenRGB composites img over an opaque white background
func flattenRGB(img image.Image) *image.NRGBA {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
