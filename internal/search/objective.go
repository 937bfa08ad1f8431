package search

import (
	"math"
	"sync/atomic"

	"eqfuzz/internal/expr"
)

// Score is the outcome of evaluating both objective expressions.
type Score struct {
	Result1 float64
	Result2 float64
	Diff    float64
}

// Finite reports whether both results and their difference are finite.
func (s Score) Finite() bool {
	return isFinite(s.Result1) && isFinite(s.Result2) && isFinite(s.Diff)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Objective scores candidates by the gap between two expressions.
type Objective struct {
	expr1, expr2 expr.Expression
	iterations   *atomic.Uint64
}

// NewObjective builds an objective over compiled expressions. Objectives
// created with the same counter share one iteration count.
func NewObjective(expr1, expr2 expr.Expression, counter *atomic.Uint64) *Objective {
	if counter == nil {
		counter = new(atomic.Uint64)
	}
	return &Objective{expr1: expr1, expr2: expr2, iterations: counter}
}

// Score evaluates both expressions against a and returns |r1 - r2|.
// An evaluation error yields NaN for that result.
func (o *Objective) Score(a Assignment) Score {
	r1, err := o.expr1.Evaluate(a)
	if err != nil {
		r1 = math.NaN()
	}
	r2, err := o.expr2.Evaluate(a)
	if err != nil {
		r2 = math.NaN()
	}
	o.iterations.Add(1)
	return Score{Result1: r1, Result2: r2, Diff: math.Abs(r1 - r2)}
}

// Iterations returns the number of scored candidates.
func (o *Objective) Iterations() uint64 { return o.iterations.Load() }
