// Package logging provides categorized zap loggers for eqfuzz.
// A single base logger is built at startup from the logging config; each
// subsystem asks for a child named after its category.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // CLI startup, config loading
	CategorySearch  Category = "search"  // Search loop lifecycle and accepted candidates
	CategoryEval    Category = "eval"    // Expression compilation
	CategoryMetrics Category = "metrics" // Prometheus endpoint
)

// Options selects level and encoding for New.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console, json
	Verbose bool   // forces debug

	// OutputPaths defaults to stderr so stdout stays reserved for results.
	OutputPaths []string
}

var (
	base   = zap.NewNop()
	baseMu sync.RWMutex
)

// New builds a zap logger from opts.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	switch opts.Format {
	case "", "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.Sampling = nil
	case "json":
		cfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	cfg.OutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// SetDefault installs l as the base for Get. A nil l restores the no-op logger.
func SetDefault(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	baseMu.Lock()
	base = l
	baseMu.Unlock()
}

// Get returns the categorized child of the default logger.
func Get(category Category) *zap.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return For(base, category)
}

// For returns the categorized child of l.
func For(l *zap.Logger, category Category) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(string(category))
}
