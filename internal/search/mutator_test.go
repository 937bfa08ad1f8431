package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutate_DoesNotModifyInput(t *testing.T) {
	rng := NewRandom(3)
	for _, round := range []bool{false, true} {
		m := NewMutator(round)
		base := Assignment{1.5, -2.25, 3, 0, 7, 11}
		saved := base.Clone()
		for i := 0; i < 100; i++ {
			_ = m.Mutate(base, rng)
			require.Equal(t, saved, base)
		}
	}
}

func TestMutate_PreservesDimension(t *testing.T) {
	rng := NewRandom(4)
	for n := 1; n <= 26; n++ {
		out := NewMutator(false).Mutate(make(Assignment, n), rng)
		assert.Len(t, out, n)
	}
}

func TestMutate_BoundedChange(t *testing.T) {
	rng := NewRandom(5)
	m := NewMutator(false)
	base := make(Assignment, 6)
	for i := 0; i < 1000; i++ {
		out := m.Mutate(base, rng)
		changed := 0
		for j := range out {
			if out[j] != base[j] {
				changed++
			}
			assert.Less(t, math.Abs(out[j]-base[j]), float64(m.Steps)*m.Magnitude)
		}
		assert.LessOrEqual(t, changed, m.Steps)
	}
}

func TestMutate_SingleVariableAlwaysChanges(t *testing.T) {
	rng := NewRandom(6)
	m := Mutator{Steps: 1, Magnitude: DefaultMagnitude}
	for i := 0; i < 1000; i++ {
		out := m.Mutate(Assignment{0}, rng)
		assert.NotEqual(t, 0.0, out[0])
		assert.Less(t, math.Abs(out[0]), DefaultMagnitude)
	}
}

func TestMutate_RoundModeYieldsIntegers(t *testing.T) {
	rng := NewRandom(8)
	m := NewMutator(true)
	base := Assignment{0, 0, 0, 0}
	for i := 0; i < 2000; i++ {
		out := m.Mutate(base, rng)
		for _, v := range out {
			assert.Equal(t, math.Trunc(v), v, "value %v has a fractional part", v)
		}
		base = out
	}
}

func TestMutate_Deterministic(t *testing.T) {
	m := NewMutator(false)
	a, b := NewRandom(99), NewRandom(99)
	base := Assignment{1, 2, 3}
	for i := 0; i < 50; i++ {
		assert.Equal(t, m.Mutate(base, a), m.Mutate(base, b))
	}
}

func TestMagnitude_OpenIntervalNonZero(t *testing.T) {
	rng := NewRandom(10)
	m := NewMutator(false)
	for i := 0; i < 10000; i++ {
		v := m.magnitude(rng)
		assert.NotEqual(t, 0.0, v)
		assert.Greater(t, v, -m.Magnitude)
		assert.Less(t, v, m.Magnitude)
	}
}
