// Package calendar ties the scheduling core together: a TimeTree of
// temporal events plus two side lists for tasks with no placement
// window, and the entry point that turns a day's events into a
// conflict-free schedule via the csp package.
package calendar

import (
	"sort"
	"time"

	"github.com/aidenh/vega/csp"
	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/timetree"
)

// Calendar owns a TimeTree of scheduled temporal events, a
// deadline-sorted list of dated todos, and a plain list of undated
// todos. Temporal tasks never appear in the todo lists and vice versa.
type Calendar struct {
	tree  *timetree.Tree
	todos *todoStore
}

// New builds an empty Calendar.
func New() (*Calendar, error) {
	store, err := newTodoStore()
	if err != nil {
		return nil, err
	}
	return &Calendar{tree: timetree.New(), todos: store}, nil
}

// ScheduleEvent builds an Event from t and the four priority weights,
// then routes it: temporal tasks go into the TimeTree (once per
// candidate interval); tasks with a deadline but no window go into the
// deadline-sorted dated-todo list; everything else goes into the plain
// todo list.
func (c *Calendar) ScheduleEvent(t event.Identity, goalValue, routineValue, personalValue, relationalValue float64) error {
	ev, err := event.New(t, goalValue, routineValue, personalValue, relationalValue)
	if err != nil {
		return err
	}

	if _, ok := ev.AsTemporal(); ok {
		return c.tree.Insert(ev)
	}
	if deadline := t.Deadline(); deadline != nil {
		return c.todos.addDated(ev, *deadline)
	}
	return c.todos.addUndated(ev)
}

// GetEvents returns every (event, candidate interval) hit overlapping
// iv.
func (c *Calendar) GetEvents(iv interval.TimeInterval) []timetree.Hit {
	return c.tree.OverlapSearch(iv)
}

// dayWindow returns the closed interval [day 00:00:00, day 23:59:59]
// in day's own location.
func dayWindow(day time.Time) interval.TimeInterval {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
	return interval.New(start, end)
}

// GetDayEvents returns every hit overlapping the given day.
func (c *Calendar) GetDayEvents(day time.Time) []timetree.Hit {
	return c.tree.OverlapSearch(dayWindow(day))
}

// GetDayEventsSortedByPriority returns the day's distinct events (one
// entry per event, not per candidate interval) ordered by descending
// current priority.
func (c *Calendar) GetDayEventsSortedByPriority(day time.Time) []*event.Event {
	hits := c.GetDayEvents(day)
	seen := make(map[*event.Event]bool, len(hits))
	events := make([]*event.Event, 0, len(hits))
	for _, h := range hits {
		if seen[h.Event] {
			continue
		}
		seen[h.Event] = true
		events = append(events, h.Event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Priority() > events[j].Priority()
	})
	return events
}

// GenerateSchedule runs the full pipeline for a single day: query the
// tree over [day 00:00:00, day 23:59:59], build domains from the
// query result, build pairs via the sweep-line extractor, then run
// AC-3 and backtracking. Returns the assignment or propagates
// InfeasibleSchedule.
func (c *Calendar) GenerateSchedule(day time.Time) (map[*event.Event]interval.TimeInterval, error) {
	window := dayWindow(day)
	hits := c.tree.OverlapSearch(window)
	pairs := timetree.Sweepline(hits)

	problem, err := csp.NewProblem(hits, pairs)
	if err != nil {
		return nil, err
	}
	return problem.Solve()
}

// DatedTodos returns every dated todo in ascending-deadline, stable
// order.
func (c *Calendar) DatedTodos() ([]*event.Event, error) {
	return c.todos.datedTodos()
}

// UndatedTodos returns every undated todo in insertion order.
func (c *Calendar) UndatedTodos() ([]*event.Event, error) {
	return c.todos.undatedTodos()
}
