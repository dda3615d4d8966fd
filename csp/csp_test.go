package csp

import (
	"testing"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/task"
	"github.com/aidenh/vega/timetree"
)

func ct(hour, min int) time.Time {
	return time.Date(2025, 10, 2, hour, min, 0, 0, time.UTC)
}

func mustCspEvent(t *testing.T, title string, startH, startM, endH, endM int, extra ...interval.TimeInterval) *event.Event {
	t.Helper()
	tt, err := task.NewTemporalTask(title, "", ct(startH, startM), ct(endH, endM), nil, nil, extra)
	Ck(err)
	e, err := event.New(tt, 1, 1, 1, 1)
	Ck(err)
	return e
}

func TestFitDisjointIsAlwaysTrue(t *testing.T) {
	i1 := interval.New(ct(6, 0), ct(7, 0))
	i2 := interval.New(ct(8, 0), ct(9, 0))
	Tassert(t, Fit(i1, i2, 50*time.Minute, 50*time.Minute), "disjoint intervals must always fit")
}

func TestFitNestedBoundary(t *testing.T) {
	outer := interval.New(ct(7, 30), ct(8, 30))
	inner := interval.New(ct(8, 0), ct(8, 30))
	Tassert(t, Fit(outer, inner, time.Hour, 30*time.Minute), "exact boundary fit must hold")
	Tassert(t, !Fit(outer, inner, time.Hour, 31*time.Minute), "one minute over the boundary must not fit")
}

func TestFitPartialOverlap(t *testing.T) {
	i1 := interval.New(ct(7, 40), ct(8, 10))
	i2 := interval.New(ct(8, 0), ct(8, 30))
	Tassert(t, !Fit(i1, i2, 30*time.Minute, 30*time.Minute), "60 minutes of work can't fit a 50 minute window")
	Tassert(t, Fit(i1, i2, 15*time.Minute, 15*time.Minute), "30 minutes of work fits a 50 minute window")
}

func TestSplitNarrowsOverlappingIntervals(t *testing.T) {
	i1 := interval.New(ct(6, 30), ct(7, 0))
	i2 := interval.New(ct(6, 0), ct(6, 40))
	newI, newJ, ok := Split(i1, i2, 30*time.Minute, 30*time.Minute)
	Tassert(t, ok, "expected a feasible split")
	Tassert(t, newI.Duration() >= 30*time.Minute, "split result for i1 must still host its duration, got %v", newI)
	Tassert(t, newJ.Duration() >= 30*time.Minute, "split result for i2 must still host its duration, got %v", newJ)
	Tassert(t, !newI.Overlaps(newJ) || newI.Start().Equal(newJ.End()) || newJ.Start().Equal(newI.End()),
		"split results should be disjoint or only touch, got %v and %v", newI, newJ)
}

// TestThreeOverlappingSolvableByReordering exercises three mutually
// overlapping events end to end: tree insert, day-window overlap
// search, sweep-line pairs, AC-3, backtracking.
func TestThreeOverlappingSolvableByReordering(t *testing.T) {
	a := mustCspEvent(t, "A", 7, 0, 7, 30,
		interval.New(ct(6, 0), ct(6, 40)),
		interval.New(ct(7, 40), ct(8, 10)),
	)
	b := mustCspEvent(t, "B", 6, 30, 7, 0,
		interval.New(ct(8, 0), ct(8, 30)),
	)
	c := mustCspEvent(t, "C", 7, 30, 8, 30)

	tree := timetree.New()
	Ck(tree.Insert(a))
	Ck(tree.Insert(b))
	Ck(tree.Insert(c))

	day := interval.New(ct(0, 0), ct(23, 59))
	hits := tree.OverlapSearch(day)
	pairs := timetree.Sweepline(hits)

	p, err := NewProblem(hits, pairs)
	Ck(err)
	assignment, err := p.Solve()
	Ck(err)
	Tassert(t, len(assignment) == 3, "expected all three events assigned, got %d", len(assignment))

	checkAssignmentConsistent(t, p, assignment)
}

// TestDomainWipeout covers two tasks whose only candidate window is
// exactly as large as their own duration and identical to each other:
// they can never both fit, so AC-3 must wipe out a domain and report
// InfeasibleSchedule.
func TestDomainWipeout(t *testing.T) {
	a := mustCspEvent(t, "A", 7, 0, 7, 40)
	b := mustCspEvent(t, "B", 7, 0, 7, 40)

	tree := timetree.New()
	Ck(tree.Insert(a))
	Ck(tree.Insert(b))

	day := interval.New(ct(0, 0), ct(23, 59))
	hits := tree.OverlapSearch(day)
	pairs := timetree.Sweepline(hits)

	p, err := NewProblem(hits, pairs)
	Ck(err)
	_, err = p.Solve()
	Tassert(t, err != nil, "expected InfeasibleSchedule for two identical zero-slack windows")
}

// TestDisjointEventsNeedNoWork covers events that never overlap at
// all: they generate no arcs, each keeps a single-element domain, and
// backtracking assigns each directly.
func TestDisjointEventsNeedNoWork(t *testing.T) {
	a := mustCspEvent(t, "A", 9, 0, 10, 0)
	b := mustCspEvent(t, "B", 11, 0, 12, 0)

	tree := timetree.New()
	Ck(tree.Insert(a))
	Ck(tree.Insert(b))

	day := interval.New(ct(0, 0), ct(23, 59))
	hits := tree.OverlapSearch(day)
	pairs := timetree.Sweepline(hits)
	Tassert(t, len(pairs) == 0, "fully disjoint events must not generate any sweep-line pairs")

	p, err := NewProblem(hits, pairs)
	Ck(err)
	Tassert(t, len(p.Domains[a]) == 1 && len(p.Domains[b]) == 1, "expected singleton domains for unconstrained events")

	assignment, err := p.Solve()
	Ck(err)
	Tassert(t, assignment[a].Equal(p.Domains[a][0]), "unconstrained event must be assigned its only candidate")
	Tassert(t, assignment[b].Equal(p.Domains[b][0]), "unconstrained event must be assigned its only candidate")
}

func TestAC3Idempotent(t *testing.T) {
	a := mustCspEvent(t, "A", 7, 0, 7, 30,
		interval.New(ct(6, 0), ct(6, 40)),
		interval.New(ct(7, 40), ct(8, 10)),
	)
	c := mustCspEvent(t, "C", 7, 30, 8, 30)

	tree := timetree.New()
	Ck(tree.Insert(a))
	Ck(tree.Insert(c))

	day := interval.New(ct(0, 0), ct(23, 59))
	hits := tree.OverlapSearch(day)
	pairs := timetree.Sweepline(hits)

	p, err := NewProblem(hits, pairs)
	Ck(err)
	Ck(p.AC3())
	firstRun := snapshotDomains(p)

	Ck(p.AC3())
	secondRun := snapshotDomains(p)

	Tassert(t, len(firstRun) == len(secondRun), "running AC3 twice must not change the number of variables")
	for e, ivs := range firstRun {
		Tassert(t, len(ivs) == len(secondRun[e]), "running AC3 twice must not change domain size for %v", e)
	}
}

func snapshotDomains(p *Problem) map[*event.Event][]interval.TimeInterval {
	out := make(map[*event.Event][]interval.TimeInterval, len(p.Domains))
	for e, ivs := range p.Domains {
		cp := make([]interval.TimeInterval, len(ivs))
		copy(cp, ivs)
		out[e] = cp
	}
	return out
}

func checkAssignmentConsistent(t *testing.T, p *Problem, assignment map[*event.Event]interval.TimeInterval) {
	t.Helper()
	for x, ix := range assignment {
		dx, ok := durationOf(p, x)
		Tassert(t, ok, "missing duration for assigned event")
		Tassert(t, ix.Duration() >= dx, "assigned interval %v shorter than task duration %v", ix, dx)
		for y, iy := range assignment {
			if x == y {
				continue
			}
			dy, _ := durationOf(p, y)
			Tassert(t, Fit(ix, iy, dx, dy), "assigned intervals %v/%v do not satisfy fits", ix, iy)
		}
	}
}

func durationOf(p *Problem, e *event.Event) (time.Duration, bool) {
	d, ok := p.durations[e]
	return d, ok
}
