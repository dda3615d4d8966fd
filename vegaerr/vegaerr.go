// Package vegaerr holds the scheduling core's error taxonomy. Validation
// failures are returned as one of these types at the API boundary; they
// are never panicked.
package vegaerr

import "fmt"

// InvalidWindow is returned when a TemporalTask's time window violates one
// of its invariants (start after end, duration below the minimum, a
// candidate interval outside [startline, deadline], etc).
type InvalidWindow struct {
	Reason string
}

func (e *InvalidWindow) Error() string {
	return fmt.Sprintf("invalid window: %s", e.Reason)
}

// InvalidWeight is returned when an Event priority-component weight falls
// outside its allowed range.
type InvalidWeight struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e *InvalidWeight) Error() string {
	return fmt.Sprintf("invalid weight %s=%v: must be in [%v, %v]", e.Name, e.Value, e.Min, e.Max)
}

// InvalidTitle is returned when a Task is constructed with a title that
// fails a basic sanity check (currently: non-empty).
type InvalidTitle struct {
	Reason string
}

func (e *InvalidTitle) Error() string {
	return fmt.Sprintf("invalid title: %s", e.Reason)
}

// NotFound is returned when a lookup by key or title finds nothing.
type NotFound struct {
	Key string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Key)
}

// IndexOutOfRange is returned by positional operations given an index
// outside the valid range.
type IndexOutOfRange struct {
	Index int
	Len   int
}

func (e *IndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// InfeasibleSchedule is returned when the CSP solver cannot produce a
// conflict-free schedule, either because AC-3 wiped out a domain or
// because backtracking exhausted every assignment. Culprit is empty when
// the failure came from backtracking exhaustion, which has no single
// offending variable.
type InfeasibleSchedule struct {
	Culprit string
}

func (e *InfeasibleSchedule) Error() string {
	if e.Culprit == "" {
		return "infeasible schedule: backtracking exhausted all assignments"
	}
	return fmt.Sprintf("infeasible schedule: domain wipeout for %s", e.Culprit)
}
