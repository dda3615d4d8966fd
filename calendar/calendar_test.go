package calendar

import (
	"testing"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/task"
)

func calT(hour, min int) time.Time {
	return time.Date(2025, 10, 2, hour, min, 0, 0, time.UTC)
}

func deadlineAt(hour, min int) *time.Time {
	t := calT(hour, min)
	return &t
}

func mustTemporal(t *testing.T, title string, startH, startM, endH, endM int) *task.TemporalTask {
	t.Helper()
	tt, err := task.NewTemporalTask(title, "", calT(startH, startM), calT(endH, endM), nil, nil, nil)
	Ck(err)
	return tt
}

func TestScheduleTemporalTaskGoesIntoTree(t *testing.T) {
	cal, err := New()
	Ck(err)
	tt := mustTemporal(t, "standup", 9, 0, 9, 15)
	Ck(cal.ScheduleEvent(tt, 1, 1, 1, 1))

	hits := cal.GetEvents(interval.New(calT(0, 0), calT(23, 59)))
	Tassert(t, len(hits) == 1, "expected one hit in the tree, got %d", len(hits))

	dated, err := cal.DatedTodos()
	Ck(err)
	Tassert(t, len(dated) == 0, "temporal task must not leak into dated todos")
}

func TestScheduleDatedTodoGoesIntoDatedList(t *testing.T) {
	cal, err := New()
	Ck(err)
	plain, err := task.NewTask("renew passport", "", deadlineAt(18, 0))
	Ck(err)
	Ck(cal.ScheduleEvent(plain, 1, 1, 1, 1))

	dated, err := cal.DatedTodos()
	Ck(err)
	Tassert(t, len(dated) == 1, "expected one dated todo, got %d", len(dated))

	undated, err := cal.UndatedTodos()
	Ck(err)
	Tassert(t, len(undated) == 0, "dated todo must not leak into undated todos")

	hits := cal.GetEvents(interval.New(calT(0, 0), calT(23, 59)))
	Tassert(t, len(hits) == 0, "dated todo must not leak into the tree")
}

func TestScheduleUndatedTodoGoesIntoPlainList(t *testing.T) {
	cal, err := New()
	Ck(err)
	plain, err := task.NewTask("buy milk", "", nil)
	Ck(err)
	Ck(cal.ScheduleEvent(plain, 1, 1, 1, 1))

	undated, err := cal.UndatedTodos()
	Ck(err)
	Tassert(t, len(undated) == 1, "expected one undated todo, got %d", len(undated))
}

func TestDatedTodosOrderedByDeadlineStable(t *testing.T) {
	cal, err := New()
	Ck(err)

	later, err := task.NewTask("later", "", deadlineAt(18, 0))
	Ck(err)
	earlierA, err := task.NewTask("earlier-a", "", deadlineAt(9, 0))
	Ck(err)
	earlierB, err := task.NewTask("earlier-b", "", deadlineAt(9, 0))
	Ck(err)

	Ck(cal.ScheduleEvent(later, 1, 1, 1, 1))
	Ck(cal.ScheduleEvent(earlierA, 1, 1, 1, 1))
	Ck(cal.ScheduleEvent(earlierB, 1, 1, 1, 1))

	dated, err := cal.DatedTodos()
	Ck(err)
	Tassert(t, len(dated) == 3, "expected three dated todos, got %d", len(dated))
	Tassert(t, dated[0].Task().Title() == "earlier-a", "expected earlier-a first, got %s", dated[0].Task().Title())
	Tassert(t, dated[1].Task().Title() == "earlier-b", "expected earlier-b second (insertion order tiebreak), got %s", dated[1].Task().Title())
	Tassert(t, dated[2].Task().Title() == "later", "expected later last, got %s", dated[2].Task().Title())
}

func TestGenerateScheduleViaCalendar(t *testing.T) {
	cal, err := New()
	Ck(err)
	a := mustTemporal(t, "a", 9, 0, 10, 0)
	b := mustTemporal(t, "b", 11, 0, 12, 0)
	Ck(cal.ScheduleEvent(a, 1, 1, 1, 1))
	Ck(cal.ScheduleEvent(b, 1, 1, 1, 1))

	assignment, err := cal.GenerateSchedule(calT(0, 0))
	Ck(err)
	Tassert(t, len(assignment) == 2, "expected both disjoint events assigned, got %d", len(assignment))
}

func TestGetDayEventsSortedByPriorityDescending(t *testing.T) {
	cal, err := New()
	Ck(err)
	a := mustTemporal(t, "a", 9, 0, 10, 0)
	b := mustTemporal(t, "b", 11, 0, 12, 0)
	Ck(cal.ScheduleEvent(a, 25, 25, 25, 25))
	Ck(cal.ScheduleEvent(b, 0, 0, 0, 0))

	sorted := cal.GetDayEventsSortedByPriority(calT(0, 0))
	Tassert(t, len(sorted) == 2, "expected two distinct events, got %d", len(sorted))
	Tassert(t, sorted[0].Priority() >= sorted[1].Priority(), "expected descending priority order")
}
