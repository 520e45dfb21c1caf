package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"dressing-virtuel/matching"
)

// ConfigPathEnvVar points at an optional YAML config file
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched when CONFIG_PATH is not set
var DefaultConfigPaths = []string{
	"config/config.yaml",
	"config.yaml",
}

// Config is the application configuration.
// Precedence: environment > YAML file > defaults
type Config struct {
	Env        string           `koanf:"env"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Models     ModelsConfig     `koanf:"models"`
	Storage    StorageConfig    `koanf:"storage"`
	Queue      QueueConfig      `koanf:"queue"`
	Suggestion SuggestionConfig `koanf:"suggestion"`
	Weather    WeatherConfig    `koanf:"weather"`
	Drive      DriveConfig      `koanf:"drive"`
	Lookbook   LookbookConfig   `koanf:"lookbook"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// ModelsConfig configures the capability services API (detection, face, segmentation, classification)
type ModelsConfig struct {
	URL           string        `koanf:"url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxRetries    int           `koanf:"max_retries"`
	RetryInterval time.Duration `koanf:"retry_interval"`
}

type StorageConfig struct {
	Root     string `koanf:"root"`
	TmpDir   string `koanf:"tmp_dir"`
	CacheDir string `koanf:"cache_dir"`
}

// QueueConfig selects how submissions run: "eager" runs inline, "background" hands them to the worker
type QueueConfig struct {
	Mode   string `koanf:"mode"`
	Buffer int64  `koanf:"buffer"`
}

type SuggestionConfig struct {
	Mode         string `koanf:"mode"`
	DefaultCount int    `koanf:"default_count"`
	MaxCount     int    `koanf:"max_count"`
}

type WeatherConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type DriveConfig struct {
	CredentialsPath string `koanf:"credentials_path"`
}

type LookbookConfig struct {
	BaseURL    string `koanf:"base_url"`
	ChromePath string `koanf:"chrome_path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() Config {
	return Config{
		Env:    "development",
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Port:    "5432",
			SSLMode: "disable",
		},
		Models: ModelsConfig{
			URL:           "http://127.0.0.1:5000/models",
			Timeout:       30 * time.Second,
			MaxRetries:    2,
			RetryInterval: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Root:     "media/wardrobe",
			TmpDir:   "media/tmp",
			CacheDir: "cache/images",
		},
		Queue: QueueConfig{
			Mode:   "background",
			Buffer: 64,
		},
		Suggestion: SuggestionConfig{
			Mode:         string(matching.ModeComplementary),
			DefaultCount: 5,
			MaxCount:     50,
		},
		Weather: WeatherConfig{
			URL:     "https://api.open-meteo.com",
			Timeout: 10 * time.Second,
		},
		Lookbook: LookbookConfig{
			BaseURL: "http://localhost:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps the environment variable names used by the deployment to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"env": "env",

	"port": "server.port",

	"database_url": "database.url",
	"db_host":      "database.host",
	"db_port":      "database.port",
	"db_user":      "database.user",
	"db_password":  "database.password",
	"db_name":      "database.name",
	"db_sslmode":   "database.sslmode",

	"models_api_url":            "models.url",
	"models_api_key":            "models.api_key",
	"models_api_timeout":        "models.timeout",
	"models_api_max_retries":    "models.max_retries",
	"models_api_retry_interval": "models.retry_interval",

	"image_storage_dir": "storage.root",
	"image_tmp_dir":     "storage.tmp_dir",
	"image_cache_dir":   "storage.cache_dir",

	"queue_mode":   "queue.mode",
	"queue_buffer": "queue.buffer",

	"suggestion_mode":          "suggestion.mode",
	"suggestion_default_count": "suggestion.default_count",
	"suggestion_max_count":     "suggestion.max_count",

	"weather_api_url":     "weather.url",
	"weather_api_timeout": "weather.timeout",

	"google_application_credentials": "drive.credentials_path",

	"lookbook_base_url": "lookbook.base_url",
	"chrome_path":       "lookbook.chrome_path",

	"log_level":  "log.level",
	"log_format": "log.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Validate checks required settings and value ranges
func (c *Config) Validate() error {
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "") {
		return fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	if c.Models.URL == "" {
		return fmt.Errorf("models.url is required")
	}
	if c.Models.Timeout <= 0 {
		return fmt.Errorf("models.timeout must be positive, got %s", c.Models.Timeout)
	}
	if c.Models.MaxRetries < 0 {
		return fmt.Errorf("models.max_retries cannot be negative, got %d", c.Models.MaxRetries)
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather.timeout must be positive, got %s", c.Weather.Timeout)
	}
	if c.Storage.Root == "" || c.Storage.TmpDir == "" {
		return fmt.Errorf("storage.root and storage.tmp_dir are required")
	}
	switch c.Queue.Mode {
	case "eager", "background":
	default:
		return fmt.Errorf("queue.mode must be eager or background, got %q", c.Queue.Mode)
	}
	if _, err := matching.ParseMode(c.Suggestion.Mode); err != nil {
		return fmt.Errorf("suggestion.mode: %w", err)
	}
	if c.Suggestion.DefaultCount <= 0 || c.Suggestion.MaxCount < c.Suggestion.DefaultCount {
		return fmt.Errorf("suggestion counts invalid: default=%d max=%d", c.Suggestion.DefaultCount, c.Suggestion.MaxCount)
	}
	return nil
}

// DSN returns the Postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
