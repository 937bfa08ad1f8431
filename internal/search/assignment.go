package search

import (
	"strconv"
	"strings"

	"eqfuzz/internal/expr"
)

// Assignment holds one value per variable, in variable order (a, b, c, ...).
// Assignments are never modified once built; operations that change values
// return a new Assignment.
type Assignment []float64

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Format renders the assignment as name=value pairs joined by sep.
func (a Assignment) Format(sep string) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = expr.VarName(i) + "=" + FormatValue(v)
	}
	return strings.Join(parts, sep)
}

func (a Assignment) String() string { return a.Format(",") }

// FormatValue renders v in the shortest form that parses back to the same
// float64. Negative zero prints as 0.
func FormatValue(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
