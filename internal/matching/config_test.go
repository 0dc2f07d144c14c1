package matching

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.SimilarityThreshold != 0.85 {
		t.Errorf("expected default threshold 0.85, got %.2f", cfg.SimilarityThreshold)
	}
	if cfg.GraceWindowDays != 45 {
		t.Errorf("expected default grace window 45, got %d", cfg.GraceWindowDays)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "default valid", mutate: func(c *Config) {}},
		{name: "threshold zero is valid", mutate: func(c *Config) { c.SimilarityThreshold = 0.0 }},
		{name: "threshold one is valid", mutate: func(c *Config) { c.SimilarityThreshold = 1.0 }},
		{name: "threshold negative", mutate: func(c *Config) { c.SimilarityThreshold = -0.1 }, expectError: true},
		{name: "threshold above one", mutate: func(c *Config) { c.SimilarityThreshold = 1.1 }, expectError: true},
		{name: "grace window zero", mutate: func(c *Config) { c.GraceWindowDays = 0 }, expectError: true},
		{name: "grace window negative", mutate: func(c *Config) { c.GraceWindowDays = -5 }, expectError: true},
		{name: "grace window too large", mutate: func(c *Config) { c.GraceWindowDays = 1000 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		cfg, err := ConfigFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("expected defaults, got %s", cfg)
		}
	})

	t.Run("overrides applied", func(t *testing.T) {
		t.Setenv("HW_MATCH_SIMILARITY_THRESHOLD", "0.9")
		t.Setenv("HW_MATCH_GRACE_WINDOW_DAYS", "30")
		cfg, err := ConfigFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SimilarityThreshold != 0.9 {
			t.Errorf("expected threshold 0.9, got %.2f", cfg.SimilarityThreshold)
		}
		if cfg.GraceWindowDays != 30 {
			t.Errorf("expected grace window 30, got %d", cfg.GraceWindowDays)
		}
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		t.Setenv("HW_MATCH_SIMILARITY_THRESHOLD", "not-a-float")
		if _, err := ConfigFromEnv(); err == nil {
			t.Error("expected error for unparsable threshold")
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		t.Setenv("HW_MATCH_SIMILARITY_THRESHOLD", "1.5")
		if _, err := ConfigFromEnv(); err == nil {
			t.Error("expected error for out-of-range threshold")
		}
	})
}
