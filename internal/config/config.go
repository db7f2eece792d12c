package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete toolkit configuration. Values come from an optional
// YAML file overlaid by ALPHALAB_-prefixed environment variables.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Research ResearchConfig `yaml:"research" envconfig:"RESEARCH"`
}

// LoggingConfig controls the slog handler.
//
// No envconfig default tags here or below: envconfig applies them whenever the
// variable is unset, which would overwrite values the YAML pass already loaded.
// Defaults are backfilled by applyDefaults instead.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// PathsConfig locates the flat-file data directories.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR" validate:"required"`
}

// ResearchConfig carries the research defaults shared by the CLIs.
type ResearchConfig struct {
	// Buckets is the default number of portfolios per sort.
	Buckets int `yaml:"buckets" envconfig:"BUCKETS" validate:"min=2,max=100"`
	// SignalLag is the default gap between signal observation and holding
	// return, in periods. Must stay positive to rule out lookahead.
	SignalLag int `yaml:"signal_lag" envconfig:"SIGNAL_LAG" validate:"min=1"`
	// PeriodsPerYear annualizes per-period statistics (12 monthly, 252 daily).
	PeriodsPerYear int `yaml:"periods_per_year" envconfig:"PERIODS_PER_YEAR" validate:"min=1"`
	// RiskFreeRate is the per-period risk-free rate.
	RiskFreeRate float64 `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE"`
}

// Load reads configuration from the optional YAML file, then overlays
// environment variables, then validates the result.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Environment variables override the file; defaults backfill whatever is
	// still unset after both passes.
	if err := envconfig.Process("ALPHALAB", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults backfills every field neither the YAML file nor the
// environment set.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.ReportsDir == "" {
		cfg.Paths.ReportsDir = "data/reports"
	}
	if cfg.Paths.CacheDir == "" {
		cfg.Paths.CacheDir = "data/cache"
	}
	if cfg.Research.Buckets == 0 {
		cfg.Research.Buckets = 10
	}
	if cfg.Research.SignalLag == 0 {
		cfg.Research.SignalLag = 1
	}
	if cfg.Research.PeriodsPerYear == 0 {
		cfg.Research.PeriodsPerYear = 12
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
