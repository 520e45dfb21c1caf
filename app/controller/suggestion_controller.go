package controller

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dressing-virtuel/logging"
	"dressing-virtuel/models"
)

// Suggester computes outfit suggestions
type Suggester interface {
	Suggest(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error)
}

// SuggestionController handles HTTP requests for outfit suggestions
type SuggestionController struct {
	suggester Suggester
}

// NewSuggestionController creates a new SuggestionController
func NewSuggestionController(suggester Suggester) *SuggestionController {
	return &SuggestionController{suggester: suggester}
}

// GetSuggestions handles GET /wardrobe/suggestions
// Query params: client_id, season (repeatable or comma separated), temperature,
// latitude, longitude, date, usage_type, id_top, id_bottom, n, mode
func (c *SuggestionController) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	req, err := parseSuggestionRequest(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	logging.Debug().Int("client_id", req.ClientID).Strs("season", req.Seasons).Int("n", req.Count).Msg("📋 GetSuggestions: request parsed")

	result, err := c.suggester.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, "suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseSuggestionRequest reads and validates suggestion query parameters
func parseSuggestionRequest(q url.Values) (models.SuggestionRequest, error) {
	var req models.SuggestionRequest
	var err error

	if req.ClientID, err = strconv.Atoi(q.Get("client_id")); err != nil {
		return req, fmt.Errorf("client_id must be an integer")
	}
	for _, v := range q["season"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Seasons = append(req.Seasons, s)
			}
		}
	}
	if req.Temperature, err = optionalFloat(q, "temperature"); err != nil {
		return req, err
	}
	if req.Latitude, err = optionalFloat(q, "latitude"); err != nil {
		return req, err
	}
	if req.Longitude, err = optionalFloat(q, "longitude"); err != nil {
		return req, err
	}
	if req.AnchorTopID, err = optionalInt(q, "id_top"); err != nil {
		return req, err
	}
	if req.AnchorBottomID, err = optionalInt(q, "id_bottom"); err != nil {
		return req, err
	}
	if v := q.Get("n"); v != "" {
		if req.Count, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("n must be an integer")
		}
	}
	req.Date = strings.TrimSpace(q.Get("date"))
	req.UsageType = strings.TrimSpace(q.Get("usage_type"))
	req.Mode = strings.ToLower(strings.TrimSpace(q.Get("mode")))

	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%s", validationMessage(err))
	}
	return req, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s must be a finite number", key)
	}
	return &f, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &i, nil
}
