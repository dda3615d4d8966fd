package task

import (
	"fmt"
	"time"

	"github.com/stevegt/goadapt"

	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/vegaerr"
)

// TemporalTask is a Task plus a nominal placement window [start, end], an
// optional outer window [startline, deadline], and a set of pairwise
// disjoint candidate placement intervals (one of which always contains
// [start, end]).
type TemporalTask struct {
	Task
	start     time.Time
	end       time.Time
	startline *time.Time
	intervals []interval.TimeInterval
}

// NewTemporalTask constructs a TemporalTask, validating every window
// invariant: start <= end, duration >= 5s, startline <= start,
// end <= deadline, and every candidate interval lies within
// [startline, deadline] when present. Candidate intervals are merged via
// AddScheduleInterval exactly as the task's own API would merge them, and
// [start, end] is added last so it is always covered by one candidate in
// the result (itself, or a merged interval enclosing it).
func NewTemporalTask(title, description string, start, end time.Time, startline, deadline *time.Time, intervals []interval.TimeInterval) (*TemporalTask, error) {
	base, err := NewTask(title, description, deadline)
	if err != nil {
		return nil, err
	}

	tt := &TemporalTask{Task: *base, start: start, end: end, startline: startline}

	for _, iv := range intervals {
		if err := tt.AddScheduleInterval(iv); err != nil {
			return nil, err
		}
	}
	if err := tt.AddScheduleInterval(interval.New(start, end)); err != nil {
		return nil, err
	}

	if startline != nil && start.Before(*startline) {
		return nil, &vegaerr.InvalidWindow{Reason: "start must not be before startline"}
	}
	if deadline != nil && deadline.Before(end) {
		return nil, &vegaerr.InvalidWindow{Reason: "end must not be after deadline"}
	}
	if start.After(end) {
		return nil, &vegaerr.InvalidWindow{Reason: "start must not be after end"}
	}
	if end.Sub(start) < 5*time.Second {
		return nil, &vegaerr.InvalidWindow{Reason: "start to end must be at least 5 seconds apart"}
	}
	if startline != nil && deadline != nil && deadline.Sub(*startline) < 5*time.Second {
		return nil, &vegaerr.InvalidWindow{Reason: "startline to deadline must be at least 5 seconds apart"}
	}

	return tt, nil
}

// Start returns the task's nominal start time.
func (t *TemporalTask) Start() time.Time { return t.start }

// End returns the task's nominal end time.
func (t *TemporalTask) End() time.Time { return t.end }

// Startline returns the task's earliest legal start time, or nil.
func (t *TemporalTask) Startline() *time.Time { return t.startline }

// Duration returns End - Start.
func (t *TemporalTask) Duration() time.Duration { return t.end.Sub(t.start) }

// TimeSlot returns the nominal placement as a TimeInterval.
func (t *TemporalTask) TimeSlot() interval.TimeInterval { return interval.New(t.start, t.end) }

// ScheduleIntervals returns a copy of the task's candidate placement
// intervals. They are pairwise disjoint but in arbitrary storage order;
// callers needing chronological order must sort the result.
func (t *TemporalTask) ScheduleIntervals() []interval.TimeInterval {
	out := make([]interval.TimeInterval, len(t.intervals))
	copy(out, t.intervals)
	return out
}

// AddScheduleInterval adds a candidate placement interval. Any existing
// candidates that overlap it are merged into a single interval spanning
// the component-wise min of starts and max of ends; the result replaces
// them. AddScheduleInterval rejects intervals outside
// [startline, deadline] before attempting any merge, so no partial
// mutation occurs on failure.
func (t *TemporalTask) AddScheduleInterval(iv interval.TimeInterval) error {
	if t.startline != nil && iv.Start().Before(*t.startline) {
		return &vegaerr.InvalidWindow{Reason: "candidate interval starts before startline"}
	}
	if t.Deadline() != nil && iv.End().After(*t.Deadline()) {
		return &vegaerr.InvalidWindow{Reason: "candidate interval ends after deadline"}
	}

	var mergers []interval.TimeInterval
	kept := make([]interval.TimeInterval, 0, len(t.intervals))
	for _, existing := range t.intervals {
		if existing.Overlaps(iv) {
			mergers = append(mergers, existing)
		} else {
			kept = append(kept, existing)
		}
	}

	merged := iv
	for _, m := range mergers {
		merged = interval.Merge(merged, m)
	}
	t.intervals = append(kept, merged)

	// Each input interval was validated individually against
	// [startline, deadline] above, so the merge of only-overlapping
	// members cannot escape that window. Assert it rather than silently
	// trust it.
	if t.startline != nil {
		goadapt.Assert(!merged.Start().Before(*t.startline), "merged interval escaped startline")
	}
	if t.Deadline() != nil {
		goadapt.Assert(!merged.End().After(*t.Deadline()), "merged interval escaped deadline")
	}
	return nil
}

// Equal reports structural equality by (title, description, start, end,
// startline, deadline, completed). Candidate intervals are not part of
// identity.
func (t *TemporalTask) Equal(other *TemporalTask) bool {
	if other == nil {
		return false
	}
	if !t.Task.Equal(&other.Task) {
		return false
	}
	if !t.start.Equal(other.start) || !t.end.Equal(other.end) {
		return false
	}
	if (t.startline == nil) != (other.startline == nil) {
		return false
	}
	if t.startline != nil && !t.startline.Equal(*other.startline) {
		return false
	}
	return true
}

func (t *TemporalTask) String() string {
	return fmt.Sprintf("TemporalTask(title=%q, start=%s, end=%s)", t.Title(), t.start.Format(time.RFC3339), t.end.Format(time.RFC3339))
}
