package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/goccy/go-json"

	"dressing-virtuel/config"
	"dressing-virtuel/logging"
	"dressing-virtuel/models"
)

const (
	capabilityDetection      = "object_detection"
	capabilityIdentity       = "face_detection"
	capabilitySegmentation   = "clothes_segmentation"
	capabilityClassification = "image_classification"

	apiKeyHeader = "access_token"
)

// ModelsClient calls the models API. One client serves all four capabilities;
// each capability has its own circuit breaker.
type ModelsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	guards     map[string]*callGuard
}

// Ensure ModelsClient implements the capability interfaces
var (
	_ PersonDetector      = (*ModelsClient)(nil)
	_ IdentityMatcher     = (*ModelsClient)(nil)
	_ GarmentSegmenter    = (*ModelsClient)(nil)
	_ AttributeClassifier = (*ModelsClient)(nil)
)

// NewModelsClient creates a ModelsClient from configuration
func NewModelsClient(cfg config.ModelsConfig) *ModelsClient {
	policy := CallPolicy{
		Timeout:       cfg.Timeout,
		MaxRetries:    cfg.MaxRetries,
		RetryInterval: cfg.RetryInterval,
	}

	guards := make(map[string]*callGuard, 4)
	for _, name := range []string{capabilityDetection, capabilityIdentity, capabilitySegmentation, capabilityClassification} {
		guards[name] = newCallGuard(name, policy)
	}

	return &ModelsClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{},
		guards:     guards,
	}
}

// imagesResponse is the body of detection and segmentation responses
type imagesResponse struct {
	Images []string `json:"images"`
}

// faceResponse is the body of a face match response
type faceResponse struct {
	Images string `json:"images"`
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

// DetectPersons returns the person crops found in image
func (c *ModelsClient) DetectPersons(ctx context.Context, image []byte) ([]models.ImageCrop, error) {
	return guarded(ctx, c.guards[capabilityDetection], func(ctx context.Context) ([]models.ImageCrop, error) {
		body, found, err := c.post(ctx, capabilityDetection,
			[]formFile{{field: "image", filename: "image.jpeg", data: image}},
			map[string]string{"category_to_detect": "person"},
		)
		if err != nil || !found {
			return nil, err
		}
		return decodeImageList(capabilityDetection, body)
	})
}

// MatchIdentity returns candidate when it shows the reference face
func (c *ModelsClient) MatchIdentity(ctx context.Context, referenceFace, candidate []byte) (models.ImageCrop, error) {
	return guarded(ctx, c.guards[capabilityIdentity], func(ctx context.Context) (models.ImageCrop, error) {
		body, found, err := c.post(ctx, capabilityIdentity,
			[]formFile{
				{field: "image", filename: "faceid.jpeg", data: referenceFace},
				{field: "images_to_search", filename: "unknown_face.jpeg", data: candidate},
			},
			nil,
		)
		if err != nil || !found {
			return nil, err
		}

		var resp faceResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s: invalid response: %w", capabilityIdentity, err)
		}
		if resp.Images == "" {
			return nil, nil
		}
		crop, err := base64.StdEncoding.DecodeString(resp.Images)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid image payload: %w", capabilityIdentity, err)
		}
		return models.ImageCrop(crop), nil
	})
}

// SegmentGarments returns the garment crops found on a person crop
func (c *ModelsClient) SegmentGarments(ctx context.Context, person []byte) ([]models.ImageCrop, error) {
	return guarded(ctx, c.guards[capabilitySegmentation], func(ctx context.Context) ([]models.ImageCrop, error) {
		body, found, err := c.post(ctx, capabilitySegmentation,
			[]formFile{{field: "image", filename: "segmentation.jpeg", data: person}},
			nil,
		)
		if err != nil || !found {
			return nil, err
		}
		return decodeImageList(capabilitySegmentation, body)
	})
}

// ClassifyAttributes returns the best label per axis. A missing or partial
// result is returned as is; callers decide whether it is usable.
func (c *ModelsClient) ClassifyAttributes(ctx context.Context, vocabulary models.Vocabulary, garment []byte) (models.Classification, error) {
	categories, err := json.Marshal(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	return guarded(ctx, c.guards[capabilityClassification], func(ctx context.Context) (models.Classification, error) {
		body, found, err := c.post(ctx, capabilityClassification,
			[]formFile{{field: "image", filename: "garment.jpeg", data: garment}},
			map[string]string{"categories_dict": string(categories)},
		)
		if err != nil || !found {
			return nil, err
		}

		var result models.Classification
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%s: invalid response: %w", capabilityClassification, err)
		}
		return result, nil
	})
}

// post sends a multipart request. found is false when the service answers 204.
func (c *ModelsClient) post(ctx context.Context, endpoint string, files []formFile, fields map[string]string) ([]byte, bool, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create form file %s: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, false, fmt.Errorf("failed to write form file %s: %w", f.field, err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, false, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, &buf)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		logging.Debug().Str("capability", endpoint).Msg("🔍 Nothing found")
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, &StatusError{Service: endpoint, Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, true, nil
}

func decodeImageList(endpoint string, body []byte) ([]models.ImageCrop, error) {
	var resp imagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", endpoint, err)
	}

	crops := make([]models.ImageCrop, 0, len(resp.Images))
	for i, encoded := range resp.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: image %d is not valid base64: %w", endpoint, i, err)
		}
		crops = append(crops, models.ImageCrop(data))
	}
	return crops, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
