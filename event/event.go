// Package event implements Event: a task reference plus four
// priority-component weights, and the diagnostic priority score derived
// from them.
package event

import (
	"fmt"
	"math"
	"time"

	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/vegaerr"
)

// Identity is the capability every task reference must offer: the
// minimal surface a plain Task needs to carry. Both *task.Task and
// *task.TemporalTask satisfy it.
type Identity interface {
	Title() string
	Description() string
	Completed() bool
	Deadline() *time.Time
}

// Temporal is the capability a TemporalTask adds: a nominal placement
// window and a candidate interval set. Only *task.TemporalTask satisfies
// it; a plain *task.Task does not.
type Temporal interface {
	Identity
	Start() time.Time
	End() time.Time
	Startline() *time.Time
	Duration() time.Duration
	TimeSlot() interval.TimeInterval
	ScheduleIntervals() []interval.TimeInterval
}

// Urgency curve constants for the scoring formula m*tanh((Δt/d)+s)+m.
const (
	urgencyMidpoint = 50.0
	urgencyScale    = 23.44065
	urgencyShift    = 1.09861228867
	semanticCap     = 100.0

	// MinWeight and MaxWeight bound each of an Event's four
	// priority-component weights.
	MinWeight = 0.0
	MaxWeight = 25.0
)

// Event is a task reference plus four priority-component weights, each
// in [MinWeight, MaxWeight].
type Event struct {
	task                                 Identity
	goal, routine, personal, relational float64
}

// New constructs an Event, validating each weight against
// [MinWeight, MaxWeight].
func New(t Identity, goalValue, routineValue, personalValue, relationalValue float64) (*Event, error) {
	weights := []struct {
		name  string
		value float64
	}{
		{"goal", goalValue},
		{"routine", routineValue},
		{"personal", personalValue},
		{"relational", relationalValue},
	}
	for _, w := range weights {
		if w.value < MinWeight || w.value > MaxWeight {
			return nil, &vegaerr.InvalidWeight{Name: w.name, Value: w.value, Min: MinWeight, Max: MaxWeight}
		}
	}
	return &Event{task: t, goal: goalValue, routine: routineValue, personal: personalValue, relational: relationalValue}, nil
}

// Task returns the event's underlying task reference.
func (e *Event) Task() Identity { return e.task }

// AsTemporal returns the event's task as a Temporal and true if the
// underlying task is a TemporalTask.
func (e *Event) AsTemporal() (Temporal, bool) {
	t, ok := e.task.(Temporal)
	return t, ok
}

// Duration returns the event's task duration. It errors if the task is
// not a TemporalTask.
func (e *Event) Duration() (time.Duration, error) {
	t, ok := e.AsTemporal()
	if !ok {
		return 0, fmt.Errorf("event task is not a TemporalTask, and has no duration")
	}
	return t.Duration(), nil
}

// ScheduleIntervals returns the event's candidate placement intervals.
// It errors if the task is not a TemporalTask.
func (e *Event) ScheduleIntervals() ([]interval.TimeInterval, error) {
	t, ok := e.AsTemporal()
	if !ok {
		return nil, fmt.Errorf("event task is not a TemporalTask, and has no schedule intervals")
	}
	return t.ScheduleIntervals(), nil
}

// TimeSlot returns the event's nominal placement. It errors if the task
// is not a TemporalTask.
func (e *Event) TimeSlot() (interval.TimeInterval, error) {
	t, ok := e.AsTemporal()
	if !ok {
		return interval.TimeInterval{}, fmt.Errorf("event task is not a TemporalTask, and has no time slot")
	}
	return t.TimeSlot(), nil
}

// semantic returns the event's semantic score: the sum of its four
// weights, capped at 100.
func (e *Event) semantic() float64 {
	return math.Min(e.goal+e.routine+e.personal+e.relational, semanticCap)
}

// timeDifferenceHours returns (now - scheduledTime) in hours, where
// scheduledTime is the task's end date for a TemporalTask, the task's
// deadline for a plain Task that has one, or now itself (yielding zero)
// otherwise.
func (e *Event) timeDifferenceHours(now time.Time) float64 {
	var scheduled time.Time
	if t, ok := e.AsTemporal(); ok {
		scheduled = t.End()
	} else if d := e.task.Deadline(); d != nil {
		scheduled = *d
	} else {
		return 0
	}
	return now.Sub(scheduled).Hours()
}

// urgencyAt returns the urgency score at the given instant: a smooth
// value in [0, 100] that rises as the deadline approaches and saturates
// afterward.
func (e *Event) urgencyAt(now time.Time) float64 {
	x := e.timeDifferenceHours(now)/urgencyScale + urgencyShift
	return urgencyMidpoint*math.Tanh(x) + urgencyMidpoint
}

// PriorityAt returns the event's diagnostic priority score as of the
// given instant: semantic * urgency. Priority is never used by the CSP
// for correctness, only for diagnostic ordering and the undated-todo
// queue.
func (e *Event) PriorityAt(now time.Time) float64 {
	return e.semantic() * e.urgencyAt(now)
}

// Priority returns the event's diagnostic priority score as of now.
func (e *Event) Priority() float64 {
	return e.PriorityAt(time.Now())
}

func (e *Event) String() string {
	return fmt.Sprintf("Event(%s, goal=%v routine=%v personal=%v relational=%v)",
		e.task.Title(), e.goal, e.routine, e.personal, e.relational)
}
