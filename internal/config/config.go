// Package config holds the application configuration: a YAML file with
// environment-variable overrides on top, so scheduled jobs can inject
// credentials without writing them to disk.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/civicsignal/hearingwatch/internal/notify"
)

// Config is the top-level application configuration.
type Config struct {
	// Client is the Legistar jurisdiction identifier (e.g. "nyc").
	Client string `yaml:"client"`

	// Token is the optional Legistar API token.
	Token string `yaml:"token,omitempty"`

	// DataDir holds the state store, the run archive, and the run lock.
	DataDir string `yaml:"data_dir"`

	// SiteDir is where the generated static site is written.
	SiteDir string `yaml:"site_dir"`

	// LookbackDays / LookaheadDays bound the fetch window around "today".
	// Lookback only bounds which ids can appear in a batch; it plays no
	// part in matching.
	LookbackDays  int `yaml:"lookback_days"`
	LookaheadDays int `yaml:"lookahead_days"`

	// GraceWindowDays is how long a deferred hearing is retried for a
	// reschedule match before being retired unmatched.
	GraceWindowDays int `yaml:"grace_window_days"`

	// CommentSimilarityThreshold is the minimum comment similarity (0-1)
	// for a reschedule pairing.
	CommentSimilarityThreshold float64 `yaml:"comment_similarity_threshold"`

	// UpdatesWindowDays is the lookback for the "recent updates" view on
	// the generated page.
	UpdatesWindowDays int `yaml:"updates_window_days"`

	// PageSize is how many upcoming hearings appear per generated page.
	PageSize int `yaml:"page_size"`

	// Notify configures the notification channels.
	Notify notify.Config `yaml:"notify"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Client:                     "nyc",
		DataDir:                    "data",
		SiteDir:                    "docs",
		LookbackDays:               7,
		LookaheadDays:              30,
		GraceWindowDays:            45,
		CommentSimilarityThreshold: 0.85,
		UpdatesWindowDays:          7,
		PageSize:                   25,
		Notify:                     notify.DefaultConfig(),
	}
}

// Validate checks if the configuration has valid values.
func (c *Config) Validate() error {
	if c.Client == "" {
		return fmt.Errorf("client is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.LookbackDays < 0 {
		return fmt.Errorf("lookback_days cannot be negative (got %d)", c.LookbackDays)
	}
	if c.LookaheadDays <= 0 {
		return fmt.Errorf("lookahead_days must be positive (got %d)", c.LookaheadDays)
	}
	if c.GraceWindowDays <= 0 {
		return fmt.Errorf("grace_window_days must be positive (got %d)", c.GraceWindowDays)
	}
	if c.CommentSimilarityThreshold < 0.0 || c.CommentSimilarityThreshold > 1.0 {
		return fmt.Errorf("comment_similarity_threshold must be between 0.0 and 1.0 (got %.2f)",
			c.CommentSimilarityThreshold)
	}
	if c.UpdatesWindowDays <= 0 {
		return fmt.Errorf("updates_window_days must be positive (got %d)", c.UpdatesWindowDays)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive (got %d)", c.PageSize)
	}
	if err := c.Notify.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// StatePath returns the path of the tracked-event store file.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "seen_events.json")
}

// ArchivePath returns the path of the run-history database.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// Load reads the config file at path, fills unset fields with defaults,
// applies environment overrides, and validates. A missing file is not an
// error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed. Used by `hearingwatch init`.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnv layers HW_* environment variables over the file values.
//
// Recognized variables:
//   - HW_CLIENT, HW_TOKEN, HW_DATA_DIR, HW_SITE_DIR
//   - HW_LOOKBACK_DAYS, HW_LOOKAHEAD_DAYS
//   - HW_GRACE_WINDOW_DAYS, HW_SIMILARITY_THRESHOLD
//   - HW_UPDATES_WINDOW_DAYS, HW_PAGE_SIZE
//   - HW_SLACK_WEBHOOK_URL (credential injection for CI)
func (c *Config) applyEnv() error {
	parseEnvString("HW_CLIENT", &c.Client)
	parseEnvString("HW_TOKEN", &c.Token)
	parseEnvString("HW_DATA_DIR", &c.DataDir)
	parseEnvString("HW_SITE_DIR", &c.SiteDir)
	parseEnvString("HW_SLACK_WEBHOOK_URL", &c.Notify.Slack.WebhookURL)

	if err := parseEnvInt("HW_LOOKBACK_DAYS", &c.LookbackDays); err != nil {
		return err
	}
	if err := parseEnvInt("HW_LOOKAHEAD_DAYS", &c.LookaheadDays); err != nil {
		return err
	}
	if err := parseEnvInt("HW_GRACE_WINDOW_DAYS", &c.GraceWindowDays); err != nil {
		return err
	}
	if err := parseEnvFloat("HW_SIMILARITY_THRESHOLD", &c.CommentSimilarityThreshold); err != nil {
		return err
	}
	if err := parseEnvInt("HW_UPDATES_WINDOW_DAYS", &c.UpdatesWindowDays); err != nil {
		return err
	}
	if err := parseEnvInt("HW_PAGE_SIZE", &c.PageSize); err != nil {
		return err
	}
	return nil
}

// parseEnvString copies an environment variable into dest when set
func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
