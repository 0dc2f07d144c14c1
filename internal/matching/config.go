package matching

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the reschedule matcher
type Config struct {
	// SimilarityThreshold is the minimum comment similarity (0.0-1.0) to pair
	// a deferred hearing with a replacement candidate
	// Higher values = more conservative (fewer false pairs, more unmatched deferrals)
	// Lower values = more aggressive (more false pairs)
	// Default: 0.85
	SimilarityThreshold float64

	// GraceWindowDays is how many days past its original date a deferred
	// hearing remains eligible for matching. A replacement dated further out
	// than this is rejected, and the sweeper retires the deferral once the
	// window lapses.
	// Default: 45
	GraceWindowDays int
}

// DefaultConfig returns the default matcher configuration
//
// These defaults are chosen to:
// - Prevent false pairings (high similarity threshold)
// - Cover the reschedule horizons observed in practice (45 day window)
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		GraceWindowDays:     45,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0.0 || c.SimilarityThreshold > 1.0 {
		return fmt.Errorf("similarity_threshold must be between 0.0 and 1.0 (got %.2f)",
			c.SimilarityThreshold)
	}
	if c.GraceWindowDays <= 0 {
		return fmt.Errorf("grace_window_days must be positive (got %d)", c.GraceWindowDays)
	}
	if c.GraceWindowDays > 365 {
		return fmt.Errorf("grace_window_days too large (got %d, max 365)", c.GraceWindowDays)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf("Config{Threshold: %.2f, GraceWindow: %dd}",
		c.SimilarityThreshold, c.GraceWindowDays)
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - HW_MATCH_SIMILARITY_THRESHOLD: Minimum similarity (0.0-1.0) to pair (default: 0.85)
//   - HW_MATCH_GRACE_WINDOW_DAYS: Days a deferral stays matchable (default: 45)
//
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("HW_MATCH_SIMILARITY_THRESHOLD", &cfg.SimilarityThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("HW_MATCH_GRACE_WINDOW_DAYS", &cfg.GraceWindowDays); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}

	return cfg, nil
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
