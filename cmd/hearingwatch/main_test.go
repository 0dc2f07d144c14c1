package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "nope.yaml")
	dataDir = ""
	t.Cleanup(func() { configPath = "hearingwatch.yaml"; dataDir = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "nyc", cfg.Client)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadConfigDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hearingwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client: seattle\nlookahead_days: 14\n"), 0644))

	configPath = path
	dataDir = filepath.Join(dir, "state")
	t.Cleanup(func() { configPath = "hearingwatch.yaml"; dataDir = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "seattle", cfg.Client)
	assert.Equal(t, 14, cfg.LookaheadDays)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.DataDir)
}
