package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"eqfuzz/internal/config"
	"eqfuzz/internal/expr"
	"eqfuzz/internal/logging"
	"eqfuzz/internal/search"
	"eqfuzz/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errInterrupted maps to exit status 130.
var errInterrupted = errors.New("interrupted")

// flags holds the command line; values only override config when set.
type flags struct {
	configPath  string
	vars        int
	round       bool
	seed        uint64
	workers     int
	maxCycles   uint64
	corpusLimit int
	verbose     bool
	logLevel    string
	logFormat   string
	metricsAddr string
	initConfig  bool
}

// app is one CLI invocation.
type app struct {
	flags  flags
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "eqfuzz [flags] EXPR1 EXPR2 [CONDITION...]",
		Short: "Search for variable values that make two expressions equal",
		Long: `The program will attempt to resolve variables such that EXPR1 == EXPR2.

Variables are named a, b, c, ... Each CONDITION must evaluate to true (or 1)
for a candidate to be considered. Expressions use Go syntax with math
helpers such as sqrt, pow, abs, sin and pi.`,
		Example: `  eqfuzz 'a*a' '49' 'a > 0'
  eqfuzz --vars 3 --round=false 'a*b+c' '10.5'`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 && !a.flags.initConfig {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.initConfig {
				return a.writeConfig(cmd.OutOrStdout())
			}
			if len(args) < 2 {
				return cmd.Help()
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&a.flags.configPath, "config", "c", config.DefaultPath, "Config file path")
	f.IntVarP(&a.flags.vars, "vars", "n", 6, "Number of variables (1-26)")
	f.BoolVar(&a.flags.round, "round", true, "Truncate mutated values to integers")
	f.Uint64Var(&a.flags.seed, "seed", 0, "Random seed (0 = from entropy)")
	f.IntVarP(&a.flags.workers, "workers", "w", 1, "Concurrent search workers")
	f.Uint64Var(&a.flags.maxCycles, "max-cycles", 0, "Stop after this many cycles (0 = unbounded)")
	f.IntVar(&a.flags.corpusLimit, "corpus-limit", 0, "Maximum corpus size (0 = unbounded)")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Enable debug logging")
	f.StringVar(&a.flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&a.flags.logFormat, "log-format", "console", "Log format (console, json)")
	f.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVar(&a.flags.initConfig, "init-config", false, "Write the effective configuration to --config and exit")

	return cmd
}

// setup loads config, applies flags that were set, and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("vars") {
		cfg.Search.Variables = a.flags.vars
	}
	if f.Changed("round") {
		cfg.Search.Round = a.flags.round
	}
	if f.Changed("seed") {
		cfg.Search.Seed = a.flags.seed
	}
	if f.Changed("workers") {
		cfg.Search.Workers = a.flags.workers
	}
	if f.Changed("max-cycles") {
		cfg.Search.MaxCycles = a.flags.maxCycles
	}
	if f.Changed("corpus-limit") {
		cfg.Search.CorpusLimit = a.flags.corpusLimit
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = a.flags.logLevel
	}
	if f.Changed("log-format") {
		cfg.Logging.Format = a.flags.logFormat
	}
	if f.Changed("metrics-addr") {
		cfg.Metrics.Address = a.flags.metricsAddr
		cfg.Metrics.Enabled = a.flags.metricsAddr != ""
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: a.flags.verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	logging.Get(logging.CategoryBoot).Debug("Configuration loaded",
		zap.String("path", a.flags.configPath),
		zap.Int("variables", cfg.Search.Variables),
		zap.Bool("deterministic", cfg.Deterministic()))
	return nil
}

// writeConfig saves the merged configuration so it can be edited and reused.
func (a *app) writeConfig(out io.Writer) error {
	if err := a.cfg.Save(a.flags.configPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote configuration to %s\n", a.flags.configPath)
	return nil
}

// run compiles the problem and searches until solved, interrupted or stopped.
func (a *app) run(parent context.Context, out io.Writer, args []string) error {
	if parent == nil {
		parent = context.Background()
	}
	if a.cfg == nil {
		a.cfg = config.DefaultConfig()
	}
	s := a.cfg.Search

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Get(logging.CategoryBoot).Info("Received signal, stopping search", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	var metrics *telemetry.Metrics
	var server *telemetry.Server
	if a.cfg.Metrics.Enabled {
		metrics = telemetry.New()
		srv, err := telemetry.Listen(a.cfg.Metrics.Address, metrics, logging.For(a.logger, logging.CategoryMetrics))
		if err != nil {
			return err
		}
		server = srv
	}

	loop, err := search.New(
		search.Problem{Expr1: args[0], Expr2: args[1], Conditions: args[2:]},
		expr.NewInterpreter(logging.For(a.logger, logging.CategoryEval)),
		search.Options{
			Variables:   s.Variables,
			Round:       s.Round,
			Seed:        s.Seed,
			Workers:     s.Workers,
			MaxCycles:   s.MaxCycles,
			CorpusLimit: s.CorpusLimit,
			Steps:       s.Mutation.Steps,
			Magnitude:   s.Mutation.Magnitude,
			Logger:      logging.For(a.logger, logging.CategorySearch),
			Reporter:    newConsoleReporter(out),
			Metrics:     metrics,
		})
	if err != nil {
		if server != nil {
			_ = server.Close()
		}
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	if server != nil {
		g.Go(func() error {
			return server.Serve(gctx)
		})
	}
	g.Go(func() error {
		defer stop()
		_, err := loop.Run(gctx)
		return err
	})
	err = g.Wait()

	if loop.Solution() != nil {
		return nil
	}
	if ctx.Err() != nil {
		return errInterrupted
	}
	return err
}

// exitStatus reports err the way the command line expects and returns the
// process exit code.
func exitStatus(stdout, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errInterrupted) {
		return 130
	}
	var ce *expr.CompileError
	if errors.As(err, &ce) {
		fmt.Fprintf(stdout, "Error: %v\n", ce.Err)
		fmt.Fprintf(stdout, "Expression: %s\n", ce.Expr)
		return 1
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func main() {
	os.Exit(exitStatus(os.Stdout, os.Stderr, newRootCmd().Execute()))
}
