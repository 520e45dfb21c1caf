package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithDatabaseURL(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_URL", "postgres://wardrobe@localhost/wardrobe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.DSN() != "postgres://wardrobe@localhost/wardrobe" {
		t.Errorf("DSN() = %q", cfg.Database.DSN())
	}
	if cfg.Models.Timeout != 30*time.Second {
		t.Errorf("Models.Timeout = %s, want 30s", cfg.Models.Timeout)
	}
	if cfg.Queue.Mode != "background" {
		t.Errorf("Queue.Mode = %q, want background", cfg.Queue.Mode)
	}
	if cfg.Suggestion.Mode != "complementary" {
		t.Errorf("Suggestion.Mode = %q, want complementary", cfg.Suggestion.Mode)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
database:
  host: db.internal
  user: wardrobe
  name: wardrobe
models:
  url: http://models.internal/api
  max_retries: 4
queue:
  mode: eager
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MODELS_API_TIMEOUT", "5s")
	t.Setenv("SUGGESTION_MODE", "triadic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Models.URL != "http://models.internal/api" {
		t.Errorf("Models.URL = %q", cfg.Models.URL)
	}
	if cfg.Models.MaxRetries != 4 {
		t.Errorf("Models.MaxRetries = %d, want 4", cfg.Models.MaxRetries)
	}
	if cfg.Models.Timeout != 5*time.Second {
		t.Errorf("Models.Timeout = %s, want 5s", cfg.Models.Timeout)
	}
	if cfg.Queue.Mode != "eager" {
		t.Errorf("Queue.Mode = %q, want eager", cfg.Queue.Mode)
	}
	if cfg.Suggestion.Mode != "triadic" {
		t.Errorf("Suggestion.Mode = %q, want triadic", cfg.Suggestion.Mode)
	}
	if !strings.Contains(cfg.Database.DSN(), "host=db.internal") {
		t.Errorf("DSN() = %q, want host=db.internal", cfg.Database.DSN())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database", func(c *Config) { c.Database.URL = "" }, "database connection"},
		{"bad queue mode", func(c *Config) { c.Queue.Mode = "celery" }, "queue.mode"},
		{"bad suggestion mode", func(c *Config) { c.Suggestion.Mode = "monochrome" }, "suggestion.mode"},
		{"zero timeout", func(c *Config) { c.Models.Timeout = 0 }, "models.timeout"},
		{"negative retries", func(c *Config) { c.Models.MaxRetries = -1 }, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Database.URL = "postgres://localhost/wardrobe"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
