package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/dataset"
)

// Config is the full application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Guide    GuideConfig    `mapstructure:"guide"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	History  HistoryConfig  `mapstructure:"history"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RulesConfig points at an optional YAML rules file; empty uses the built-in rules.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// GuideConfig customizes the disposal guide presentation. ImageDir, when
// set, is served by the HTTP server under /bins.
type GuideConfig struct {
	ImageBase string `mapstructure:"image_base"`
	ImageDir  string `mapstructure:"image_dir"`
}

// DatasetConfig locates the training image dataset.
type DatasetConfig struct {
	Path    string   `mapstructure:"path"`
	Classes []string `mapstructure:"classes"`
}

// DatabaseConfig locates the SQLite history database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// HistoryConfig toggles classification history recording.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SourceConfig selects and tunes the image-label source.
type SourceConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api_key"`
	Prompt     string        `mapstructure:"prompt"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	MaxRetries int           `mapstructure:"max_retries"`
	RateLimit  int           `mapstructure:"rate_limit"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("history.enabled", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("dataset.classes", dataset.DefaultClasses)
	v.SetDefault("source.provider", "ollama")
	v.SetDefault("source.timeout", 2*time.Minute)
	v.SetDefault("source.retry_delay", time.Second)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.rate_limit", 60)
}

// Load decodes v into a Config, fills API keys from provider environment
// variables when not configured, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cfg.Source.Provider = strings.ToLower(strings.TrimSpace(cfg.Source.Provider))
	if cfg.Source.APIKey == "" {
		cfg.Source.APIKey = apiKeyFromEnv(cfg.Source.Provider)
	}

	cfg.Rules.Path = ExpandPath(cfg.Rules.Path)
	cfg.Dataset.Path = ExpandPath(cfg.Dataset.Path)
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Guide.ImageDir = ExpandPath(cfg.Guide.ImageDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	switch c.Source.Provider {
	case "ollama", "static":
	case "gemini", "openai":
		if c.Source.APIKey == "" {
			errs = append(errs, fmt.Errorf("%w: source.api_key is required for provider %s", common.ErrMissingConfig, c.Source.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("source.provider must be one of ollama, gemini, openai, static, got %q", c.Source.Provider))
	}

	if c.Source.MaxRetries < 0 {
		errs = append(errs, errors.New("source.max_retries must not be negative"))
	}
	if c.Source.RateLimit < 0 {
		errs = append(errs, errors.New("source.rate_limit must not be negative"))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, errors.New("source.timeout must not be negative"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.History.Enabled && c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("%w: database.path is required when history is enabled", common.ErrMissingConfig))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
