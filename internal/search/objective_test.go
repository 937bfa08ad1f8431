package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjective_Score(t *testing.T) {
	o := NewObjective(
		fakeExpr{text: "a+b", fn: func(v []float64) float64 { return v[0] + v[1] }},
		fakeExpr{text: "5", fn: constant(5)},
		nil,
	)

	s := o.Score(Assignment{1, 2})
	assert.Equal(t, Score{Result1: 3, Result2: 5, Diff: 2}, s)
	assert.True(t, s.Finite())

	s = o.Score(Assignment{4, 3})
	assert.Equal(t, 2.0, s.Diff, "difference is absolute")
	assert.Equal(t, uint64(2), o.Iterations())
}

func TestObjective_ErrorBecomesNaN(t *testing.T) {
	o := NewObjective(failingExpr{}, fakeExpr{text: "0", fn: constant(0)}, nil)

	s := o.Score(Assignment{0})
	assert.True(t, math.IsNaN(s.Result1))
	assert.True(t, math.IsNaN(s.Diff))
	assert.False(t, s.Finite())
	assert.Equal(t, uint64(1), o.Iterations())
}

func TestScore_Finite(t *testing.T) {
	assert.False(t, Score{Result1: math.Inf(1), Result2: 0, Diff: math.Inf(1)}.Finite())
	assert.False(t, Score{Result1: math.Inf(1), Result2: math.Inf(1), Diff: math.NaN()}.Finite())
	assert.True(t, Score{Result1: -1, Result2: 1, Diff: 2}.Finite())
}
