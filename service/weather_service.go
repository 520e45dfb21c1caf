package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"dressing-virtuel/config"
)

const capabilityWeather = "weather"

// WeatherService reads hourly forecasts from an Open-Meteo compatible API
type WeatherService struct {
	baseURL    string
	httpClient *http.Client
	guard      *callGuard
	now        func() time.Time
}

// Ensure WeatherService implements WeatherProvider
var _ WeatherProvider = (*WeatherService)(nil)

// NewWeatherService creates a new WeatherService
func NewWeatherService(cfg config.WeatherConfig) *WeatherService {
	return &WeatherService{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{},
		guard:      newCallGuard(capabilityWeather, CallPolicy{Timeout: cfg.Timeout, MaxRetries: 1, RetryInterval: 300 * time.Millisecond}),
		now:        time.Now,
	}
}

type forecastResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

// NoonTemperature returns the 12:00 UTC temperature in Celsius. An empty date means today.
func (s *WeatherService) NoonTemperature(ctx context.Context, latitude, longitude float64, date string) (float64, error) {
	if date == "" {
		date = s.now().UTC().Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', 4, 64))
	q.Set("hourly", "temperature_2m")
	q.Set("start_date", date)
	q.Set("end_date", date)
	q.Set("timezone", "UTC")
	endpoint := s.baseURL + "/v1/forecast?" + q.Encode()

	forecast, err := guarded(ctx, s.guard, func(ctx context.Context) (*forecastResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build weather request: %w", err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("weather request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read weather response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Service: capabilityWeather, Code: resp.StatusCode, Body: truncate(string(body), 200)}
		}

		var out forecastResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("invalid weather response: %w", err)
		}
		return &out, nil
	})
	if err != nil {
		return 0, err
	}

	noon := date + "T12:00"
	for i, t := range forecast.Hourly.Time {
		if t != noon {
			continue
		}
		if i >= len(forecast.Hourly.Temperature2m) || forecast.Hourly.Temperature2m[i] == nil {
			break
		}
		return *forecast.Hourly.Temperature2m[i], nil
	}
	return 0, fmt.Errorf("no temperature at %s in forecast", noon)
}
