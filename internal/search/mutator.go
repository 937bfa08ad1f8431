package search

import (
	"math"
	"math/rand/v2"
)

const (
	// DefaultSteps is the number of perturbations applied per mutation.
	DefaultSteps = 3
	// DefaultMagnitude bounds each perturbation to the open interval (-100, 100).
	DefaultMagnitude = 100.0
)

// Mutator derives a new candidate from a sampled corpus member.
type Mutator struct {
	// Steps is the number of independent perturbations per mutation.
	Steps int
	// Magnitude bounds each perturbation to (-Magnitude, Magnitude).
	Magnitude float64
	// Round truncates every perturbed slot toward zero.
	Round bool
}

// NewMutator returns a mutator with the default step count and magnitude.
func NewMutator(round bool) Mutator {
	return Mutator{Steps: DefaultSteps, Magnitude: DefaultMagnitude, Round: round}
}

// Mutate returns a perturbed copy of base; base itself is left untouched.
//
// Each step picks a slot uniformly, then adds or subtracts (chosen uniformly)
// a nonzero value drawn from (-Magnitude, Magnitude). In round mode the slot
// is truncated toward zero right after it changes.
func (m Mutator) Mutate(base Assignment, rng *rand.Rand) Assignment {
	out := base.Clone()
	if len(out) == 0 {
		return out
	}
	for step := 0; step < m.Steps; step++ {
		idx := rng.IntN(len(out))
		delta := m.magnitude(rng)
		switch rng.IntN(2) {
		case 0:
			out[idx] += delta
		case 1:
			out[idx] -= delta
		}
		if m.Round {
			out[idx] = math.Trunc(out[idx])
		}
	}
	return out
}

// magnitude draws uniformly from the open interval (-Magnitude, Magnitude),
// redrawing on exactly zero and on the closed lower endpoint.
func (m Mutator) magnitude(rng *rand.Rand) float64 {
	for {
		v := (rng.Float64()*2 - 1) * m.Magnitude
		if v != 0 && v > -m.Magnitude {
			return v
		}
	}
}
