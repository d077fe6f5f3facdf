// Package config provides configuration management for the feed builder.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingDataDir      = errors.New("paths.data_dir is required")
	ErrInvalidLatestCap    = errors.New("feeds.latest_cap must be at least 1")
	ErrInvalidDailyCap     = errors.New("feeds.daily_cap must be at least 1")
	ErrMissingFeedVersion  = errors.New("feeds.version is required")
	ErrInvalidMaxAge       = errors.New("freshness.max_age must be positive")
	ErrInvalidDebounce     = errors.New("watch.debounce must be non-negative")
	ErrInvalidDigestTop    = errors.New("outputs.digest_top must be non-negative")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
	ErrMissingDefaultValue = errors.New("defaults.country, defaults.language and defaults.sentiment are required")
)

// Environment variables that override file settings.
const (
	EnvDataDir   = "NEWSDESK_DATA_DIR"
	EnvRunsDir   = "NEWSDESK_RUNS_DIR"
	EnvLogLevel  = "NEWSDESK_LOG_LEVEL"
	EnvLogFormat = "NEWSDESK_LOG_FORMAT"
)

// Config represents the complete builder configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Freshness FreshnessConfig `yaml:"freshness"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Outputs   OutputsConfig   `yaml:"outputs"`
	Watch     WatchConfig     `yaml:"watch"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig locates inputs and outputs. Empty RunsDir and IndieDir are
// derived from DataDir.
type PathsConfig struct {
	DataDir  string `yaml:"data_dir"`
	RunsDir  string `yaml:"runs_dir"`
	IndieDir string `yaml:"indie_dir"`
}

// FeedsConfig bounds the materialized feeds.
type FeedsConfig struct {
	Version   string `yaml:"version"`
	LatestCap int    `yaml:"latest_cap"`
	DailyCap  int    `yaml:"daily_cap"`
}

// FreshnessConfig controls the status record.
type FreshnessConfig struct {
	MaxAge time.Duration `yaml:"max_age"`
}

// DefaultsConfig holds the values used for absent article fields.
type DefaultsConfig struct {
	Country   string `yaml:"country"`
	Language  string `yaml:"language"`
	Sentiment string `yaml:"sentiment"`
	Curator   string `yaml:"curator"`
}

// OutputsConfig toggles the derived documents written next to the feeds.
type OutputsConfig struct {
	Indices   bool `yaml:"indices"`
	Entries   bool `yaml:"entries"`
	Catalog   bool `yaml:"catalog"`
	Digest    bool `yaml:"digest"`
	DigestTop int  `yaml:"digest_top"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: "data",
		},
		Feeds: FeedsConfig{
			Version:   "v1.0",
			LatestCap: 200,
			DailyCap:  500,
		},
		Freshness: FreshnessConfig{
			MaxAge: 12 * time.Hour,
		},
		Defaults: DefaultsConfig{
			Country:   "Regional",
			Language:  "es",
			Sentiment: "neutral",
			Curator:   "Codex 1",
		},
		Outputs: OutputsConfig{
			Indices:   true,
			Entries:   true,
			Catalog:   true,
			Digest:    true,
			DigestTop: 20,
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
// Keys missing from the file keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load resolves the effective configuration: the file at path when it is not
// empty, Default otherwise, then environment overrides from the process and an
// optional .env file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Paths.DataDir = v
	}

	if v := os.Getenv(EnvRunsDir); v != "" {
		c.Paths.RunsDir = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return ErrMissingDataDir
	}

	if c.Feeds.Version == "" {
		return ErrMissingFeedVersion
	}

	if c.Feeds.LatestCap < 1 {
		return ErrInvalidLatestCap
	}

	if c.Feeds.DailyCap < 1 {
		return ErrInvalidDailyCap
	}

	if c.Freshness.MaxAge <= 0 {
		return ErrInvalidMaxAge
	}

	if c.Defaults.Country == "" || c.Defaults.Language == "" || c.Defaults.Sentiment == "" {
		return ErrMissingDefaultValue
	}

	if c.Outputs.DigestTop < 0 {
		return ErrInvalidDigestTop
	}

	if c.Watch.Debounce < 0 {
		return ErrInvalidDebounce
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// RunsDir returns the directory holding run snapshots.
func (c *Config) RunsDir() string {
	if c.Paths.RunsDir != "" {
		return c.Paths.RunsDir
	}

	return filepath.Join(c.Paths.DataDir, "runs")
}

// IndieDir returns the directory holding hand-curated article drops.
func (c *Config) IndieDir() string {
	if c.Paths.IndieDir != "" {
		return c.Paths.IndieDir
	}

	return filepath.Join(c.Paths.DataDir, "indie")
}

// IndexDir returns the directory holding status, catalog and count indices.
func (c *Config) IndexDir() string {
	return filepath.Join(c.Paths.DataDir, "index")
}

// EntriesDir returns the root of the per-day entry partitions.
func (c *Config) EntriesDir() string {
	return filepath.Join(c.Paths.DataDir, "entries")
}

// LatestFeedPath returns data/feed-latest.json.
func (c *Config) LatestFeedPath() string {
	return filepath.Join(c.Paths.DataDir, "feed-latest.json")
}

// DailyFeedPath returns data/feed-YYYY-MM-DD.json for day.
func (c *Config) DailyFeedPath(day string) string {
	return filepath.Join(c.Paths.DataDir, fmt.Sprintf("feed-%s.json", day))
}

// StatusPath returns data/index/status.json.
func (c *Config) StatusPath() string {
	return filepath.Join(c.IndexDir(), "status.json")
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDir: %s, LatestCap: %d, DailyCap: %d, MaxAge: %s}",
		c.Paths.DataDir,
		c.Feeds.LatestCap,
		c.Feeds.DailyCap,
		c.Freshness.MaxAge,
	)
}
