package search

import "fmt"

// BestDifference is either unset or the smallest difference accepted so far.
type BestDifference struct {
	set   bool
	value float64
}

// Unset returns a BestDifference with no value.
func Unset() BestDifference { return BestDifference{} }

// Value returns a BestDifference holding d.
func Value(d float64) BestDifference { return BestDifference{set: true, value: d} }

// Get returns the value and whether one is set.
func (b BestDifference) Get() (float64, bool) { return b.value, b.set }

// IsSet reports whether a value has been recorded.
func (b BestDifference) IsSet() bool { return b.set }

// Improves reports whether d strictly beats b. Ties never improve.
func (b BestDifference) Improves(d float64) bool {
	return !b.set || d < b.value
}

func (b BestDifference) String() string {
	if !b.set {
		return "unset"
	}
	return FormatValue(b.value)
}

// GoString keeps %#v output readable in test failures.
func (b BestDifference) GoString() string {
	if !b.set {
		return "search.Unset()"
	}
	return fmt.Sprintf("search.Value(%v)", b.value)
}
