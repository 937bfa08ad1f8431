package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eqfuzz/internal/expr"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "eqfuzz.yaml"

// Config holds all eqfuzz configuration.
type Config struct {
	// Search settings
	Search SearchConfig `yaml:"search"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics"`
}

// SearchConfig configures the search loop.
type SearchConfig struct {
	Variables   int            `yaml:"variables"`    // number of variables a.., 1..26
	Round       bool           `yaml:"round"`        // truncate mutated values to integers
	Seed        uint64         `yaml:"seed"`         // 0 = derive from entropy
	Workers     int            `yaml:"workers"`      // concurrent search goroutines
	MaxCycles   uint64         `yaml:"max_cycles"`   // 0 = run until solved
	CorpusLimit int            `yaml:"corpus_limit"` // 0 = unbounded
	Mutation    MutationConfig `yaml:"mutation"`
}

// MutationConfig tunes the mutation operator.
type MutationConfig struct {
	Steps     int     `yaml:"steps"`
	Magnitude float64 `yaml:"magnitude"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// ValidLogLevels lists accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists accepted logging.format values.
var ValidLogFormats = []string{"console", "json"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Variables: 6,
			Round:     true,
			Seed:      0,
			Workers:   1,
			Mutation: MutationConfig{
				Steps:     3,
				Magnitude: 100,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9464",
		},
	}
}

// Load reads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies EQFUZZ_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("EQFUZZ_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid EQFUZZ_SEED %q: %w", v, err)
		}
		c.Search.Seed = seed
	}
	if v := os.Getenv("EQFUZZ_VARIABLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EQFUZZ_VARIABLES %q: %w", v, err)
		}
		c.Search.Variables = n
	}
	if v := os.Getenv("EQFUZZ_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EQFUZZ_WORKERS %q: %w", v, err)
		}
		c.Search.Workers = n
	}
	if v := os.Getenv("EQFUZZ_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("EQFUZZ_METRICS_ADDR"); v != "" {
		c.Metrics.Address = v
		c.Metrics.Enabled = true
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	s := c.Search
	if s.Variables < 1 || s.Variables > expr.MaxVariables {
		return fmt.Errorf("search.variables must be in [1, %d], got %d", expr.MaxVariables, s.Variables)
	}
	if s.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1, got %d", s.Workers)
	}
	if s.CorpusLimit < 0 || s.CorpusLimit == 1 {
		return fmt.Errorf("search.corpus_limit must be 0 (unbounded) or at least 2, got %d", s.CorpusLimit)
	}
	if s.Mutation.Steps < 1 {
		return fmt.Errorf("search.mutation.steps must be at least 1, got %d", s.Mutation.Steps)
	}
	if !(s.Mutation.Magnitude > 0) {
		return fmt.Errorf("search.mutation.magnitude must be positive, got %v", s.Mutation.Magnitude)
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging.format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address required when metrics are enabled")
	}
	return nil
}

// Deterministic reports whether runs with this config are reproducible.
func (c *Config) Deterministic() bool {
	return c.Search.Seed != 0 && c.Search.Workers == 1
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
