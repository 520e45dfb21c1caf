package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dressing-virtuel/config"
)

const forecastBody = `{
  "hourly": {
    "time": ["2026-03-14T00:00", "2026-03-14T06:00", "2026-03-14T12:00", "2026-03-14T18:00"],
    "temperature_2m": [4.1, 6.3, 17.5, 11.0]
  }
}`

func TestNoonTemperature(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query = r.URL.RawQuery
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	s := NewWeatherService(config.WeatherConfig{URL: srv.URL, Timeout: time.Second})
	got, err := s.NoonTemperature(context.Background(), 48.8566, 2.3522, "2026-03-14")
	if err != nil {
		t.Fatalf("NoonTemperature() error = %v", err)
	}
	if got != 17.5 {
		t.Errorf("NoonTemperature() = %v, want 17.5", got)
	}
	for _, want := range []string{"latitude=48.8566", "longitude=2.3522", "start_date=2026-03-14", "hourly=temperature_2m"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %s", query, want)
		}
	}
}

func TestNoonTemperatureDefaultsToToday(t *testing.T) {
	var date string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date = r.URL.Query().Get("start_date")
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	s := NewWeatherService(config.WeatherConfig{URL: srv.URL, Timeout: time.Second})
	s.now = func() time.Time { return time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC) }

	if _, err := s.NoonTemperature(context.Background(), 0, 0, ""); err != nil {
		t.Fatalf("NoonTemperature() error = %v", err)
	}
	if date != "2026-03-14" {
		t.Errorf("start_date = %q, want 2026-03-14", date)
	}
}

func TestNoonTemperatureErrors(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		status  int
		body    string
		wantErr string
	}{
		{"invalid date", "14/03/2026", http.StatusOK, forecastBody, "invalid date"},
		{"noon missing", "2026-03-15", http.StatusOK, forecastBody, "no temperature"},
		{"null temperature", "2026-03-14", http.StatusOK, `{"hourly":{"time":["2026-03-14T12:00"],"temperature_2m":[null]}}`, "no temperature"},
		{"bad request", "2026-03-14", http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range"}`, "status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewWeatherService(config.WeatherConfig{URL: srv.URL, Timeout: time.Second})
			_, err := s.NoonTemperature(context.Background(), 48.85, 2.35, tt.date)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("NoonTemperature() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
