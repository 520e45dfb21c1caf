package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dressing-virtuel/logging"
	"dressing-virtuel/utils"
)

// ErrDriveUnavailable is returned when Drive intake is requested without credentials
var ErrDriveUnavailable = errors.New("google drive is not configured")

// ErrPathOutsideTmpDir is returned for submission paths that are not temp images
var ErrPathOutsideTmpDir = errors.New("image path is outside the temp directory")

// maxUploadBytes caps a single stored image
const maxUploadBytes = 20 << 20

// IntakeService stores incoming photos in the temp directory the pipeline reads from
type IntakeService struct {
	tmpDir string
	drive  DriveServiceInterface
}

// NewIntakeService creates a new IntakeService. drive may be nil.
func NewIntakeService(tmpDir string, drive DriveServiceInterface) *IntakeService {
	return &IntakeService{tmpDir: tmpDir, drive: drive}
}

// SaveImage writes one image to the temp directory and returns its path
func (s *IntakeService) SaveImage(r io.Reader) (string, error) {
	if err := os.MkdirAll(s.tmpDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := filepath.Join(s.tmpDir, utils.GenerateImageName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxUploadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxUploadBytes {
		err = fmt.Errorf("image exceeds %d bytes", maxUploadBytes)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return path, nil
}

// ResolvePaths checks that every path is a file inside the temp directory and
// returns the cleaned absolute paths
func (s *IntakeService) ResolvePaths(paths []string) ([]string, error) {
	root, err := filepath.Abs(s.tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp directory: %w", err)
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("%w: %s", ErrPathOutsideTmpDir, p)
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			return nil, fmt.Errorf("image %s not found", p)
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}

// FromDrive downloads every image of a Drive folder into the temp directory.
// Files that fail to download are skipped and counted.
func (s *IntakeService) FromDrive(ctx context.Context, folderID string) ([]string, int, error) {
	if s.drive == nil {
		return nil, 0, ErrDriveUnavailable
	}

	images, err := s.drive.ListImages(ctx, folderID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list images from Drive: %w", err)
	}

	var paths []string
	skipped := 0
	for _, img := range images {
		data, err := s.drive.DownloadImage(ctx, img.FileID)
		if err != nil {
			logging.Warn().Err(err).Str("file", img.Name).Msg("⚠️  Could not download Drive image, skipping")
			skipped++
			continue
		}
		path, err := s.SaveImage(bytes.NewReader(data))
		if err != nil {
			logging.Warn().Err(err).Str("file", img.Name).Msg("⚠️  Could not store Drive image, skipping")
			skipped++
			continue
		}
		paths = append(paths, path)
	}

	logging.Info().Str("folder", folderID).Int("stored", len(paths)).Int("skipped", skipped).Msg("📥 Drive images stored")
	return paths, skipped, nil
}

// Discard removes stored temp images of a submission that will not run
func (s *IntakeService) Discard(paths []string) {
	for _, p := range paths {
		removeTempFile(p)
	}
}
