package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Search.Variables != 6 {
		t.Errorf("expected Variables=6, got %d", cfg.Search.Variables)
	}
	if !cfg.Search.Round {
		t.Error("expected Round=true by default")
	}
	if cfg.Search.Mutation.Steps != 3 {
		t.Errorf("expected Steps=3, got %d", cfg.Search.Mutation.Steps)
	}
	if cfg.Search.Mutation.Magnitude != 100 {
		t.Errorf("expected Magnitude=100, got %v", cfg.Search.Mutation.Magnitude)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("EQFUZZ_SEED", "")
	t.Setenv("EQFUZZ_VARIABLES", "")

	path := filepath.Join(t.TempDir(), "nested", "eqfuzz.yaml")

	cfg := DefaultConfig()
	cfg.Search.Variables = 3
	cfg.Search.Seed = 77
	cfg.Search.Round = false
	cfg.Logging.Format = "json"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eqfuzz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  variables: 2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Search.Variables)
	assert.True(t, cfg.Search.Round)
	assert.Equal(t, 3, cfg.Search.Mutation.Steps)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eqfuzz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestEnvOverrides(t *testing.T) {
	t.Run("seed and variables", func(t *testing.T) {
		t.Setenv("EQFUZZ_SEED", "12345")
		t.Setenv("EQFUZZ_VARIABLES", "4")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, uint64(12345), cfg.Search.Seed)
		assert.Equal(t, 4, cfg.Search.Variables)
	})

	t.Run("metrics address enables metrics", func(t *testing.T) {
		t.Setenv("EQFUZZ_METRICS_ADDR", "127.0.0.1:9999")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Address)
	})

	t.Run("log level is lowercased", func(t *testing.T) {
		t.Setenv("EQFUZZ_LOG_LEVEL", "DEBUG")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("malformed numbers are errors", func(t *testing.T) {
		t.Setenv("EQFUZZ_WORKERS", "many")

		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero variables", mutate: func(c *Config) { c.Search.Variables = 0 }},
		{name: "27 variables", mutate: func(c *Config) { c.Search.Variables = 27 }},
		{name: "no workers", mutate: func(c *Config) { c.Search.Workers = 0 }},
		{name: "corpus limit one", mutate: func(c *Config) { c.Search.CorpusLimit = 1 }},
		{name: "negative corpus limit", mutate: func(c *Config) { c.Search.CorpusLimit = -5 }},
		{name: "no mutation steps", mutate: func(c *Config) { c.Search.Mutation.Steps = 0 }},
		{name: "zero magnitude", mutate: func(c *Config) { c.Search.Mutation.Magnitude = 0 }},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
		{name: "metrics without address", mutate: func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Search.Variables = 26
	cfg.Search.CorpusLimit = 2
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Deterministic(), "entropy seed is not reproducible")

	cfg.Search.Seed = 1
	assert.True(t, cfg.Deterministic())

	cfg.Search.Workers = 2
	assert.False(t, cfg.Deterministic())
}
