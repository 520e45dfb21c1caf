package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"dressing-virtuel/config"
	"dressing-virtuel/logging"
	"dressing-virtuel/matching"
	"dressing-virtuel/metrics"
	"dressing-virtuel/models"
	"dressing-virtuel/repository"
)

var (
	// ErrMissingSeasonOrTemperature is returned when no season set can be derived
	ErrMissingSeasonOrTemperature = matching.ErrMissingSeasonOrTemperature
	// ErrInvalidTemperature is returned for NaN or infinite temperatures
	ErrInvalidTemperature = matching.ErrInvalidTemperature
	// ErrUnknownMode is returned for an unsupported harmony mode
	ErrUnknownMode = matching.ErrUnknownMode
	// ErrNoMatchingClothes is returned when the season and usage filters leave nothing
	ErrNoMatchingClothes = errors.New("no clothes match the requested season and usage type")
	// ErrNoMatchFound is returned when no iteration produced a pairing
	ErrNoMatchFound = errors.New("no matching outfit found")
	// ErrAnchorConflict is returned when both a top and a bottom anchor are given
	ErrAnchorConflict = errors.New("id_top and id_bottom cannot both be set")
	// ErrAnchorNotFound is returned when the anchor is not among the filtered garments
	ErrAnchorNotFound = errors.New("anchor garment not found for this client, season and usage type")
	// ErrWeatherUnavailable is returned when the temperature lookup fails
	ErrWeatherUnavailable = errors.New("weather lookup failed")
)

// SuggestionService proposes top/bottom pairings from a client's catalogue
type SuggestionService struct {
	garments     repository.GarmentRepositoryInterface
	weather      WeatherProvider
	defaultMode  matching.Mode
	defaultCount int
	maxCount     int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSuggestionService creates a new SuggestionService. weather may be nil,
// in which case coordinates are ignored.
func NewSuggestionService(garments repository.GarmentRepositoryInterface, weather WeatherProvider, cfg config.SuggestionConfig) (*SuggestionService, error) {
	mode, err := matching.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	seed := uint64(time.Now().UnixNano())
	return &SuggestionService{
		garments:     garments,
		weather:      weather,
		defaultMode:  mode,
		defaultCount: cfg.DefaultCount,
		maxCount:     cfg.MaxCount,
		rng:          rand.New(rand.NewPCG(seed, seed>>1|1)),
	}, nil
}

// Suggest builds up to n pairings. It fails only when the request is
// inconsistent, the filters leave nothing, or no pairing at all was found.
func (s *SuggestionService) Suggest(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error) {
	result, err := s.suggest(ctx, req)
	if err != nil {
		metrics.Suggestions.WithLabelValues(suggestionOutcome(err)).Inc()
		return nil, err
	}
	metrics.Suggestions.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *SuggestionService) suggest(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error) {
	if req.AnchorTopID != nil && req.AnchorBottomID != nil {
		return nil, ErrAnchorConflict
	}

	mode := s.defaultMode
	if req.Mode != "" {
		m, err := matching.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	n := req.Count
	if n <= 0 {
		n = s.defaultCount
	}
	if s.maxCount > 0 && n > s.maxCount {
		n = s.maxCount
	}

	temperature, err := s.temperature(ctx, req)
	if err != nil {
		return nil, err
	}

	seasons, err := matching.ResolveSeasons(req.Seasons, temperature)
	if err != nil {
		return nil, err
	}

	catalogue, err := s.garments.GetByClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	filtered := filterCatalogue(catalogue, seasons, req.UsageType)
	if len(filtered) == 0 {
		return nil, ErrNoMatchingClothes
	}
	tops, bottoms := splitCatalogue(filtered)

	var matches []models.MatchResult
	switch {
	case req.AnchorTopID != nil:
		anchor, ok := findCandidate(tops, *req.AnchorTopID)
		if !ok {
			return nil, ErrAnchorNotFound
		}
		for _, c := range pickEach(matching.Rank(anchor.Color, bottoms, mode), n) {
			matches = append(matches, models.MatchResult{IDTop: anchor.ID, IDBottom: c.ID})
		}
	case req.AnchorBottomID != nil:
		anchor, ok := findCandidate(bottoms, *req.AnchorBottomID)
		if !ok {
			return nil, ErrAnchorNotFound
		}
		for _, c := range pickEach(matching.Rank(anchor.Color, tops, mode), n) {
			matches = append(matches, models.MatchResult{IDTop: c.ID, IDBottom: anchor.ID})
		}
	default:
		matches = s.randomMatches(tops, bottoms, mode, n)
	}

	if len(matches) == 0 {
		return nil, ErrNoMatchFound
	}

	logging.Info().
		Int("client_id", req.ClientID).
		Strs("seasons", seasons).
		Str("mode", string(mode)).
		Int("requested", n).
		Int("found", len(matches)).
		Msg("👕 Outfit suggestions computed")

	return &models.SuggestionResult{
		ClientID:    req.ClientID,
		Temperature: temperature,
		Seasons:     seasons,
		Mode:        string(mode),
		Matches:     matches,
	}, nil
}

// temperature returns the request temperature, looking it up from the
// coordinates when neither a season nor a temperature was given
func (s *SuggestionService) temperature(ctx context.Context, req models.SuggestionRequest) (*float64, error) {
	if req.Temperature != nil || hasSeason(req.Seasons) {
		return req.Temperature, nil
	}
	if req.Latitude == nil || req.Longitude == nil || s.weather == nil {
		return nil, nil
	}

	t, err := s.weather.NoonTemperature(ctx, *req.Latitude, *req.Longitude, req.Date)
	if err != nil {
		logging.Warn().Err(err).Float64("latitude", *req.Latitude).Float64("longitude", *req.Longitude).Msg("⚠️  Weather lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	return &t, nil
}

// randomMatches draws a random top as anchor for each iteration. Draws are
// with replacement; an anchor drawn again gets its next ranked bottom.
func (s *SuggestionService) randomMatches(tops, bottoms []matching.Candidate, mode matching.Mode, n int) []models.MatchResult {
	if len(tops) == 0 || len(bottoms) == 0 {
		return nil
	}

	ranked := make(map[int][]matching.Candidate)
	used := make(map[int]int)
	var matches []models.MatchResult

	for i := 0; i < n; i++ {
		anchor := tops[s.intN(len(tops))]
		list, ok := ranked[anchor.ID]
		if !ok {
			list = matching.Rank(anchor.Color, bottoms, mode)
			ranked[anchor.ID] = list
		}
		if len(list) == 0 {
			continue
		}
		pick := list[used[anchor.ID]%len(list)]
		used[anchor.ID]++
		matches = append(matches, models.MatchResult{IDTop: anchor.ID, IDBottom: pick.ID})
	}
	return matches
}

func (s *SuggestionService) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// pickEach returns n picks cycling through ranked, best first
func pickEach(ranked []matching.Candidate, n int) []matching.Candidate {
	if len(ranked) == 0 {
		return nil
	}
	picks := make([]matching.Candidate, n)
	for i := range picks {
		picks[i] = ranked[i%len(ranked)]
	}
	return picks
}

func filterCatalogue(catalogue []models.GarmentDetail, seasons []string, usageType string) []models.GarmentDetail {
	usageType = strings.TrimSpace(usageType)
	out := make([]models.GarmentDetail, 0, len(catalogue))
	for _, g := range catalogue {
		if !matching.ContainsSeason(seasons, g.Season) {
			continue
		}
		if usageType != "" && g.UsageType != usageType {
			continue
		}
		out = append(out, g)
	}
	return out
}

func splitCatalogue(garments []models.GarmentDetail) (tops, bottoms []matching.Candidate) {
	for _, g := range garments {
		c := matching.Candidate{ID: g.ID, Color: g.ColorRGB}
		switch g.SubCategory {
		case models.SubCategoryTopwear:
			tops = append(tops, c)
		case models.SubCategoryBottomwear:
			bottoms = append(bottoms, c)
		}
	}
	return tops, bottoms
}

func findCandidate(list []matching.Candidate, id int) (matching.Candidate, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return matching.Candidate{}, false
}

func hasSeason(seasons []string) bool {
	for _, s := range seasons {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func suggestionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrMissingSeasonOrTemperature):
		return "missing_season"
	case errors.Is(err, ErrNoMatchingClothes):
		return "no_clothes"
	case errors.Is(err, ErrNoMatchFound):
		return "no_match"
	case errors.Is(err, ErrInvalidTemperature), errors.Is(err, ErrUnknownMode):
		return "bad_request"
	case errors.Is(err, ErrAnchorConflict), errors.Is(err, ErrAnchorNotFound):
		return "bad_anchor"
	case errors.Is(err, ErrWeatherUnavailable):
		return "weather_failed"
	default:
		return "error"
	}
}
