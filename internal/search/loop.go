// Package search implements the equation search: a greedy, elitist
// hill-climber over a corpus of variable assignments.
//
// Every cycle samples an assignment from the corpus, mutates it, drops it
// if any side-condition fails, scores it by the gap between two
// expressions, and keeps it only when it strictly beats the best gap seen so
// far. Every kept assignment stays sampleable for the rest of the run. The
// search ends when the gap reaches exactly zero.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"eqfuzz/internal/expr"
	"eqfuzz/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Run when the configured cycle cap is reached
// without an exact match.
var ErrStopped = errors.New("search stopped: cycle limit reached")

// errSolved cancels sibling workers once one of them finds a match.
var errSolved = errors.New("solved")

// Outcome is the result of a single search cycle.
type Outcome int

const (
	// OutcomeFiltered means a condition rejected the candidate before scoring.
	OutcomeFiltered Outcome = iota
	// OutcomeNonFinite means a result or the difference was NaN or infinite.
	OutcomeNonFinite
	// OutcomeRejected means the candidate did not strictly improve on the best difference.
	OutcomeRejected
	// OutcomeAccepted means the candidate was appended to the corpus.
	OutcomeAccepted
	// OutcomeSolved means the candidate was accepted with a difference of exactly zero.
	OutcomeSolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFiltered:
		return "filtered"
	case OutcomeNonFinite:
		return "non_finite"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeSolved:
		return "solved"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Problem is the equation to solve.
type Problem struct {
	Expr1      string
	Expr2      string
	Conditions []string
}

// Options configures a search run.
type Options struct {
	// Variables is the assignment length, 1..26.
	Variables int
	// Round truncates mutated values to integers.
	Round bool
	// Seed drives the pseudorandom source. Zero draws a seed from entropy;
	// the value actually used is available from Loop.Seed.
	Seed uint64
	// Workers is the number of concurrent search goroutines. Runs are only
	// reproducible with a single worker.
	Workers int
	// MaxCycles stops the run with ErrStopped after this many cycles (0 = never).
	MaxCycles uint64
	// CorpusLimit caps the corpus size (0 = unbounded).
	CorpusLimit int
	// Steps and Magnitude override the mutator defaults when nonzero.
	Steps     int
	Magnitude float64

	RunID    string
	Logger   *zap.Logger
	Reporter Reporter
	Metrics  *telemetry.Metrics
}

type worker struct {
	id        int
	rng       *rand.Rand
	filter    *Filter
	objective *Objective
}

// Loop owns the corpus and drives the search.
type Loop struct {
	problem  Problem
	opts     Options
	seed     uint64
	runID    string
	corpus   *Corpus
	mutator  Mutator
	workers  []*worker
	logger   *zap.Logger
	reporter Reporter
	metrics  *telemetry.Metrics

	iterations  atomic.Uint64
	cycles      atomic.Uint64
	seedPending atomic.Bool

	// mu makes compare-append-report atomic across workers.
	mu       sync.Mutex
	best     BestDifference
	accepted int
	solution *Solution
}

// New compiles the problem's expressions and prepares a run. Compilation
// failures are returned as *expr.CompileError wrapped with the role of the
// offending expression; no cycle runs in that case.
func New(p Problem, compiler expr.Compiler, opts Options) (*Loop, error) {
	corpus, err := NewCorpus(opts.Variables)
	if err != nil {
		return nil, err
	}
	corpus.WithLimit(opts.CorpusLimit)

	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}

	mutator := NewMutator(opts.Round)
	if opts.Steps > 0 {
		mutator.Steps = opts.Steps
	}
	if opts.Magnitude > 0 {
		mutator.Magnitude = opts.Magnitude
	}

	seed := opts.Seed
	if seed == 0 {
		seed = EntropySeed()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	l := &Loop{
		problem:  p,
		opts:     opts,
		seed:     seed,
		runID:    runID,
		corpus:   corpus,
		mutator:  mutator,
		logger:   opts.Logger.With(zap.String("run_id", runID)),
		reporter: opts.Reporter,
		metrics:  opts.Metrics,
		best:     Unset(),
	}
	l.seedPending.Store(true)

	// Compiled programs are not shared between goroutines, so each worker
	// gets its own set.
	for id := 0; id < opts.Workers; id++ {
		w, err := l.newWorker(id, compiler)
		if err != nil {
			return nil, err
		}
		l.workers = append(l.workers, w)
	}

	l.metrics.SetCorpusSize(corpus.Size())
	l.logger.Info("Search configured",
		zap.String("expr1", p.Expr1),
		zap.String("expr2", p.Expr2),
		zap.Int("conditions", l.workers[0].filter.Len()),
		zap.Int("variables", opts.Variables),
		zap.Bool("round", opts.Round),
		zap.Uint64("seed", seed),
		zap.Int("workers", opts.Workers))
	return l, nil
}

func (l *Loop) newWorker(id int, compiler expr.Compiler) (*worker, error) {
	n := l.opts.Variables
	e1, err := compiler.Compile(l.problem.Expr1, n)
	if err != nil {
		return nil, fmt.Errorf("expr1: %w", err)
	}
	e2, err := compiler.Compile(l.problem.Expr2, n)
	if err != nil {
		return nil, fmt.Errorf("expr2: %w", err)
	}
	conds := make([]expr.Expression, 0, len(l.problem.Conditions))
	for i, text := range l.problem.Conditions {
		c, err := compiler.Compile(text, n)
		if err != nil {
			return nil, fmt.Errorf("condition[%d]: %w", i, err)
		}
		conds = append(conds, c)
	}
	return &worker{
		id:        id,
		rng:       NewRandom(l.seed + uint64(id)),
		filter:    NewFilter(conds...),
		objective: NewObjective(e1, e2, &l.iterations),
	}, nil
}

// Step runs one cycle on the first worker. It is meant for callers that
// drive the loop themselves; Run is the usual entry point.
func (l *Loop) Step() (Outcome, error) {
	if l.Solution() != nil {
		return OutcomeSolved, nil
	}
	return l.step(l.workers[0])
}

// Run cycles until an exact match is found, ctx is cancelled, or the cycle
// cap is reached.
func (l *Loop) Run(ctx context.Context) (*Solution, error) {
	if sol := l.Solution(); sol != nil {
		return sol, nil
	}

	var err error
	if len(l.workers) == 1 {
		err = l.runWorker(ctx, l.workers[0])
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, w := range l.workers {
			g.Go(func() error {
				return l.runWorker(gctx, w)
			})
		}
		err = g.Wait()
	}

	if errors.Is(err, errSolved) {
		return l.Solution(), nil
	}
	best := l.Best()
	l.logger.Info("Search ended without a match",
		zap.Stringer("best", best),
		zap.Uint64("iterations", l.Iterations()),
		zap.Uint64("cycles", l.Cycles()),
		zap.Error(err))
	return nil, err
}

func (l *Loop) runWorker(ctx context.Context, w *worker) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if max := l.opts.MaxCycles; max > 0 && l.cycles.Load() >= max {
			return ErrStopped
		}

		outcome, err := l.step(w)
		if err != nil {
			return err
		}
		if outcome == OutcomeSolved {
			return errSolved
		}
	}
}

// step performs one cycle: sample, mutate, filter, evaluate, decide. The
// very first cycle of a run scores the all-zero seed itself instead of a
// mutation of it.
func (l *Loop) step(w *worker) (Outcome, error) {
	l.cycles.Add(1)

	var candidate Assignment
	if l.seedPending.CompareAndSwap(true, false) {
		candidate = make(Assignment, l.corpus.Dim())
	} else {
		base := l.corpus.Sample(w.rng)
		candidate = l.mutator.Mutate(base, w.rng)
	}

	if !w.filter.Passes(candidate) {
		l.metrics.ObserveCycle(OutcomeFiltered.String())
		return OutcomeFiltered, nil
	}

	start := time.Now()
	score := w.objective.Score(candidate)
	l.metrics.ObserveEvaluation(time.Since(start))

	if !score.Finite() {
		l.metrics.ObserveCycle(OutcomeNonFinite.String())
		return OutcomeNonFinite, nil
	}

	outcome, err := l.decide(w, candidate, score)
	if err != nil {
		return outcome, err
	}
	l.metrics.ObserveCycle(outcome.String())
	return outcome, nil
}

// decide applies the strict-improvement rule. Ties are rejected.
func (l *Loop) decide(w *worker, candidate Assignment, score Score) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.solution != nil || !l.best.Improves(score.Diff) {
		return OutcomeRejected, nil
	}
	if err := l.corpus.Append(candidate); err != nil {
		return OutcomeRejected, err
	}
	l.best = Value(score.Diff)
	l.accepted++

	size := l.corpus.Size()
	iter := l.iterations.Load()
	l.metrics.ObserveAccept(size, score.Diff)
	l.logger.Debug("Accepted candidate",
		zap.Int("worker", w.id),
		zap.Uint64("iteration", iter),
		zap.Int("corpus", size),
		zap.Stringer("vars", candidate),
		zap.Float64("diff", score.Diff))
	l.reporter.Progress(Report{
		RunID:      l.runID,
		Worker:     w.id,
		Iteration:  iter,
		CorpusSize: size,
		Candidate:  candidate.Clone(),
		Score:      score,
	})

	if score.Diff != 0 {
		return OutcomeAccepted, nil
	}

	l.solution = &Solution{
		RunID:      l.runID,
		Expr1:      l.problem.Expr1,
		Expr2:      l.problem.Expr2,
		Conditions: append([]string(nil), l.problem.Conditions...),
		Witness:    candidate.Clone(),
		Score:      score,
		Iterations: iter,
		Cycles:     l.cycles.Load(),
		CorpusSize: size,
		Seed:       l.seed,
	}
	l.logger.Info("Solution found",
		zap.Stringer("witness", candidate),
		zap.Uint64("iterations", iter),
		zap.Int("corpus", size))
	l.reporter.Solved(l.solution)
	return OutcomeSolved, nil
}

// Best returns the smallest accepted difference so far.
func (l *Loop) Best() BestDifference {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.best
}

// Accepted returns the number of accepted improvements.
func (l *Loop) Accepted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accepted
}

// Solution returns the match, or nil while the search is still open.
func (l *Loop) Solution() *Solution {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.solution
}

// Corpus returns the loop's corpus.
func (l *Loop) Corpus() *Corpus { return l.corpus }

// Iterations returns the number of scored candidates.
func (l *Loop) Iterations() uint64 { return l.iterations.Load() }

// Cycles returns the number of cycles run, including filtered ones.
func (l *Loop) Cycles() uint64 { return l.cycles.Load() }

// Seed returns the seed actually in use.
func (l *Loop) Seed() uint64 { return l.seed }

// RunID identifies this run in logs and reports.
func (l *Loop) RunID() string { return l.runID }
