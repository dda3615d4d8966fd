// Package interval implements TimeInterval, a closed interval over
// absolute timestamps.
package interval

import (
	"fmt"
	"time"
)

// TimeInterval is a closed interval [Start, End] over absolute
// timestamps. It is an immutable value type.
type TimeInterval struct {
	start time.Time
	end   time.Time
}

// New creates a TimeInterval. The caller must ensure start is not after
// end; New does not validate. Callers that need minimum-duration and
// window checks should go through task.TemporalTask, whose constructor
// owns those invariants.
func New(start, end time.Time) TimeInterval {
	return TimeInterval{start: start, end: end}
}

// Start returns the interval's start time.
func (iv TimeInterval) Start() time.Time { return iv.start }

// End returns the interval's end time.
func (iv TimeInterval) End() time.Time { return iv.end }

// Duration returns End - Start.
func (iv TimeInterval) Duration() time.Duration { return iv.end.Sub(iv.start) }

// Overlaps reports whether the two closed intervals share at least one
// instant: self.start <= other.end && other.start <= self.end.
func (iv TimeInterval) Overlaps(other TimeInterval) bool {
	return !iv.start.After(other.end) && !other.start.After(iv.end)
}

// Contains reports whether iv wholly contains other: iv.start <=
// other.start && other.end <= iv.end.
func (iv TimeInterval) Contains(other TimeInterval) bool {
	return !other.start.Before(iv.start) && !other.end.After(iv.end)
}

// Equal reports structural equality: identical start and end instants.
func (iv TimeInterval) Equal(other TimeInterval) bool {
	return iv.start.Equal(other.start) && iv.end.Equal(other.end)
}

// Less orders intervals lexicographically by (start, end), the order the
// augmented AVL tree keys on.
func (iv TimeInterval) Less(other TimeInterval) bool {
	if !iv.start.Equal(other.start) {
		return iv.start.Before(other.start)
	}
	return iv.end.Before(other.end)
}

// Compare returns -1, 0, or 1 per the (start, end) lexicographic order.
func (iv TimeInterval) Compare(other TimeInterval) int {
	switch {
	case iv.Equal(other):
		return 0
	case iv.Less(other):
		return -1
	default:
		return 1
	}
}

// String renders the interval for diagnostics.
func (iv TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}

// Min returns the earlier of two times.
func Min(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of two times.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// AbsDuration returns the absolute value of a duration.
func AbsDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Merge returns the smallest interval enclosing both a and b: the
// component-wise min of starts and max of ends.
func Merge(a, b TimeInterval) TimeInterval {
	return TimeInterval{start: Min(a.start, b.start), end: Max(a.end, b.end)}
}
