package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultConcurrency, cfg.Analysis.Concurrency)
	assert.Equal(t, config.DefaultDriverTimeout, cfg.Analysis.DriverTimeout)
	assert.Equal(t, config.DefaultCancelGrace, cfg.Analysis.CancelGrace)
	assert.Equal(t, config.DefaultCategories(), cfg.Analysis.Categories)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, config.DefaultCacheTTL, cfg.Cache.TTL)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
analysis:
  concurrency: 5
  driver_timeout: "30s"
  cancel_grace: "2s"
  categories:
    - security

cache:
  directory: "/tmp/test-cache"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, 5, cfg.Analysis.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Analysis.DriverTimeout)
	assert.Equal(t, 2*time.Second, cfg.Analysis.CancelGrace)
	assert.Equal(t, []string{"security"}, cfg.Analysis.Categories)
	assert.Equal(t, "/tmp/test-cache", cfg.Cache.Directory)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("REVIEWFORGE_ANALYSIS_CONCURRENCY", "7")
	t.Setenv("REVIEWFORGE_CACHE_DIRECTORY", "/tmp/env-cache")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Analysis.Concurrency)
	assert.Equal(t, "/tmp/env-cache", cfg.Cache.Directory)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Positive(t, cfg.Analysis.Concurrency)
	assert.Positive(t, cfg.Analysis.DriverTimeout)
	assert.Positive(t, cfg.Analysis.CancelGrace)
}

func TestValidateConfig_RejectsNonPositiveConcurrency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := dir + "/bad.yaml"
	require.NoError(t, os.WriteFile(cfgPath, []byte("analysis:\n  concurrency: 0\n"), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConcurrency)
}

func TestTimeDurationParsing(t *testing.T) {
	t.Parallel()

	configContent := `
analysis:
  driver_timeout: "90s"
  cancel_grace: "10s"

cache:
  ttl: "48h"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-duration-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, 90*time.Second, cfg.Analysis.DriverTimeout)
	assert.Equal(t, 10*time.Second, cfg.Analysis.CancelGrace)
	assert.Equal(t, 48*time.Hour, cfg.Cache.TTL)
}
