// Package csp implements the binary constraint-satisfaction solver that
// assigns each event one of its candidate intervals such that no two
// assigned intervals leave their durations unable to coexist: arc
// consistency (AC-3) followed by backtracking search with interval
// splitting.
package csp

import (
	"time"

	"github.com/aidenh/vega/interval"
)

// Fit reports whether two tasks of durations d1, d2 can both be placed
// inside the union of i1, i2 without overlapping.
func Fit(i1, i2 interval.TimeInterval, d1, d2 time.Duration) bool {
	switch {
	case !i1.Overlaps(i2):
		return true
	case i1.Contains(i2):
		return fitsNested(i1, i2, d1, d2)
	case i2.Contains(i1):
		return fitsNested(i2, i1, d2, d1)
	default:
		window := interval.Max(i1.End(), i2.End()).Sub(interval.Min(i1.Start(), i2.Start()))
		return d1+d2 <= window
	}
}

// fitsNested handles the case inner is wholly contained in outer. dOuter
// and dInner are the durations of the tasks assigned to outer and inner
// respectively.
func fitsNested(outer, inner interval.TimeInterval, dOuter, dInner time.Duration) bool {
	slack := outer.Duration() - dOuter
	left := interval.AbsDuration(outer.Start().Sub(inner.Start())) + slack
	right := interval.AbsDuration(inner.End().Sub(outer.End())) + slack
	return left >= dInner || right >= dInner
}

// mergeSplit picks between two candidate sub-intervals, preferring
// their union when both admit their respective task durations, falling
// back to whichever single one does, and failing when neither does.
func mergeSplit(a, b interval.TimeInterval, da, db time.Duration) (interval.TimeInterval, bool) {
	aValid := a.Duration() >= da
	bValid := b.Duration() >= db
	switch {
	case aValid && bValid:
		return interval.Merge(a, b), true
	case aValid:
		return a, true
	case bValid:
		return b, true
	default:
		return interval.TimeInterval{}, false
	}
}

// Split narrows two overlapping candidate intervals i1, i2 (hosting
// tasks of duration d1, d2 respectively) into a new pair whose combined
// span is at least d1+d2, or reports failure. The two results are not
// necessarily disjoint: when both sub-intervals of a pair admit their
// durations, mergeSplit keeps their bounding union.
func Split(i1, i2 interval.TimeInterval, d1, d2 time.Duration) (interval.TimeInterval, interval.TimeInterval, bool) {
	s1 := interval.New(i1.Start(), interval.Min(i2.End().Add(-d2), i1.End()))
	s2 := interval.New(interval.Max(i1.Start().Add(d1), i2.Start()), i2.End())
	s3 := interval.New(i2.Start(), interval.Min(i1.End().Add(-d1), i2.End()))
	s4 := interval.New(interval.Max(i2.Start().Add(d2), i1.Start()), i1.End())

	newI, ok1 := mergeSplit(s1, s3, d1, d2)
	newJ, ok2 := mergeSplit(s2, s4, d1, d2)
	if !ok1 || !ok2 {
		return interval.TimeInterval{}, interval.TimeInterval{}, false
	}

	outerStart := interval.Min(newI.Start(), newJ.Start())
	outerEnd := interval.Max(newI.End(), newJ.End())
	if outerEnd.Sub(outerStart) < d1+d2 {
		return interval.TimeInterval{}, interval.TimeInterval{}, false
	}
	return newI, newJ, true
}
