package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "nyc", cfg.Client)
	assert.Equal(t, 45, cfg.GraceWindowDays)
	assert.Equal(t, 0.85, cfg.CommentSimilarityThreshold)
	assert.True(t, cfg.Notify.File.Enabled)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearingwatch.yaml")
	content := `client: seattle
grace_window_days: 60
notify:
  slack:
    enabled: true
    webhook_url: https://hooks.example.com/x
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "seattle", cfg.Client)
	assert.Equal(t, 60, cfg.GraceWindowDays)
	assert.Equal(t, 30, cfg.LookaheadDays, "unset fields keep defaults")
	assert.True(t, cfg.Notify.Slack.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HW_CLIENT", "chicago")
	t.Setenv("HW_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("HW_PAGE_SIZE", "50")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "chicago", cfg.Client)
	assert.Equal(t, 0.9, cfg.CommentSimilarityThreshold)
	assert.Equal(t, 50, cfg.PageSize)
}

func TestLoadRejectsBadEnvValue(t *testing.T) {
	t.Setenv("HW_GRACE_WINDOW_DAYS", "six weeks")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearingwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grace_window_days: -1\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "grace_window_days")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty client", func(c *Config) { c.Client = "" }, "client"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"negative lookback", func(c *Config) { c.LookbackDays = -1 }, "lookback_days"},
		{"zero lookahead", func(c *Config) { c.LookaheadDays = 0 }, "lookahead_days"},
		{"threshold above one", func(c *Config) { c.CommentSimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"bad notify settings", func(c *Config) { c.Notify.Slack.Enabled = true }, "notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "hearingwatch.yaml")

	cfg := DefaultConfig()
	cfg.Client = "oakland"
	cfg.Token = "secret"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "oakland", loaded.Client)
	assert.Equal(t, "secret", loaded.Token)
}

func TestStatePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/hearingwatch"
	assert.Equal(t, "/var/lib/hearingwatch/seen_events.json", cfg.StatePath())
	assert.Equal(t, "/var/lib/hearingwatch/runs.db", cfg.ArchivePath())
}
