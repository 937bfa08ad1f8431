package search

import "eqfuzz/internal/expr"

// Filter holds the side-conditions a candidate must satisfy before it is scored.
type Filter struct {
	conditions []expr.Expression
}

// NewFilter wraps compiled conditions, evaluated in the given order.
func NewFilter(conditions ...expr.Expression) *Filter {
	return &Filter{conditions: conditions}
}

// Passes reports whether every condition evaluates to exactly 1.0 for a.
// Evaluation stops at the first condition that does not; errors, NaN and
// infinities all count as false.
func (f *Filter) Passes(a Assignment) bool {
	for _, c := range f.conditions {
		v, err := c.Evaluate(a)
		if err != nil || v != 1.0 {
			return false
		}
	}
	return true
}

// Len returns the number of conditions.
func (f *Filter) Len() int { return len(f.conditions) }
