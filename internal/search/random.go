package search

import "math/rand/v2"

// NewRandom returns the pseudorandom source driving sampling and mutation.
// A given seed always yields the same sequence; callers that want a fresh
// sequence per run should draw the seed from EntropySeed and log it.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// EntropySeed returns a nonzero seed from the runtime's entropy-seeded generator.
func EntropySeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
