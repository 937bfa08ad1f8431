package search

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"eqfuzz/internal/expr"
)

// ErrDimension is returned for a variable count outside [1, 26] or an
// assignment whose length does not match the corpus.
var ErrDimension = errors.New("invalid dimension")

// Corpus is the population candidates are sampled from: the all-zero seed
// plus every assignment accepted so far. It is never empty.
//
// The corpus is append-only unless a limit is set with WithLimit, in which
// case the oldest accepted member is evicted to make room. The seed is never
// evicted.
type Corpus struct {
	mu      sync.RWMutex
	dim     int
	limit   int
	members []Assignment
}

// NewCorpus creates a corpus holding a single all-zero assignment of length n.
func NewCorpus(n int) (*Corpus, error) {
	if n < 1 || n > expr.MaxVariables {
		return nil, fmt.Errorf("%w: %d variables (want 1..%d)", ErrDimension, n, expr.MaxVariables)
	}
	return &Corpus{
		dim:     n,
		members: []Assignment{make(Assignment, n)},
	}, nil
}

// WithLimit caps the corpus at max members. Values below 2 disable the cap,
// since the seed always occupies one slot.
func (c *Corpus) WithLimit(max int) *Corpus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if max < 2 {
		max = 0
	}
	c.limit = max
	return c
}

// Dim returns the assignment length.
func (c *Corpus) Dim() int { return c.dim }

// Sample returns a copy of a uniformly chosen member.
func (c *Corpus) Sample(rng *rand.Rand) Assignment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.members[rng.IntN(len(c.members))].Clone()
}

// Append adds a copy of a as the newest member.
func (c *Corpus) Append(a Assignment) error {
	if len(a) != c.dim {
		return fmt.Errorf("%w: assignment has %d values, corpus holds %d", ErrDimension, len(a), c.dim)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit > 0 && len(c.members) >= c.limit {
		// keep the seed at index 0
		c.members = append(c.members[:1], c.members[2:]...)
	}
	c.members = append(c.members, a.Clone())
	return nil
}

// Size returns the number of members.
func (c *Corpus) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Members returns a deep copy of every member in insertion order.
func (c *Corpus) Members() []Assignment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Assignment, len(c.members))
	for i, m := range c.members {
		out[i] = m.Clone()
	}
	return out
}
