package search

import (
	"fmt"
	"sync/atomic"

	"eqfuzz/internal/expr"
)

// fakeExpr is a native Go stand-in for a compiled expression.
type fakeExpr struct {
	text  string
	fn    func(v []float64) float64
	calls *atomic.Int64
}

func (f fakeExpr) Evaluate(v []float64) (float64, error) {
	if f.calls != nil {
		f.calls.Add(1)
	}
	return f.fn(v), nil
}

func (f fakeExpr) String() string { return f.text }

// failingExpr always returns an evaluation error.
type failingExpr struct{}

func (failingExpr) Evaluate([]float64) (float64, error) { return 0, expr.ErrEvaluation }
func (failingExpr) String() string                      { return "fail" }

// fakeCompiler resolves expression text from a fixed table.
type fakeCompiler map[string]func(v []float64) float64

func (c fakeCompiler) Compile(text string, vars int) (expr.Expression, error) {
	fn, ok := c[text]
	if !ok {
		return nil, &expr.CompileError{Expr: text, Err: fmt.Errorf("undefined: %s", text)}
	}
	return fakeExpr{text: text, fn: fn}, nil
}

func constant(v float64) func([]float64) float64 {
	return func([]float64) float64 { return v }
}

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// recorder captures reporter callbacks.
type recorder struct {
	reports   []Report
	solutions []*Solution
}

func (r *recorder) Progress(rep Report) { r.reports = append(r.reports, rep) }
func (r *recorder) Solved(s *Solution)  { r.solutions = append(r.solutions, s) }
func (r *recorder) candidates() []Assignment {
	out := make([]Assignment, len(r.reports))
	for i, rep := range r.reports {
		out[i] = rep.Candidate
	}
	return out
}
