package timetree

import (
	"testing"
	"time"

	. "github.com/stevegt/goadapt"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/task"
)

func tm(hour, min int) time.Time {
	return time.Date(2025, 10, 2, hour, min, 0, 0, time.UTC)
}

func mustEvent(t *testing.T, title string, startH, startM, endH, endM int) *event.Event {
	t.Helper()
	tt, err := task.NewTemporalTask(title, "", tm(startH, startM), tm(endH, endM), nil, nil, nil)
	Ck(err)
	e, err := event.New(tt, 1, 1, 1, 1)
	Ck(err)
	return e
}

// TestOverlapSearchScenario4 inserts intervals [1,3],[2,4],[5,6],[7,9]
// (hours past midnight), then checks OverlapSearch([3,5]) returns
// {[1,3],[2,4],[5,6]}.
func TestOverlapSearchScenario4(t *testing.T) {
	tree := New()
	e1 := mustEvent(t, "a", 1, 0, 3, 0)
	e2 := mustEvent(t, "b", 2, 0, 4, 0)
	e3 := mustEvent(t, "c", 5, 0, 6, 0)
	e4 := mustEvent(t, "d", 7, 0, 9, 0)
	for _, e := range []*event.Event{e1, e2, e3, e4} {
		Ck(tree.Insert(e))
	}
	Tassert(t, tree.Size() == 4, "expected 4 distinct keys, got %d", tree.Size())

	query := interval.New(tm(3, 0), tm(5, 0))
	hits := tree.OverlapSearch(query)
	Tassert(t, len(hits) == 3, "expected 3 hits, got %d", len(hits))

	wantEvents := map[*event.Event]bool{e1: true, e2: true, e3: true}
	for _, h := range hits {
		Tassert(t, wantEvents[h.Event], "unexpected event in hit set: %v", h)
		delete(wantEvents, h.Event)
	}
	Tassert(t, len(wantEvents) == 0, "missing expected hits: %v", wantEvents)

	Ck(tree.Verify())
}

func TestInsertThenDeleteRestoresTree(t *testing.T) {
	tree := New()
	events := []*event.Event{
		mustEvent(t, "a", 1, 0, 2, 0),
		mustEvent(t, "b", 3, 0, 4, 0),
		mustEvent(t, "c", 5, 0, 6, 0),
		mustEvent(t, "d", 7, 0, 8, 0),
		mustEvent(t, "e", 9, 0, 10, 0),
	}
	for _, e := range events {
		Ck(tree.Insert(e))
	}
	wantSize := tree.Size()
	wantKeys := tree.InorderKeys()

	target := events[2]
	Ck(tree.Delete(target))
	Tassert(t, tree.Size() == wantSize-1, "expected size to drop by one after delete")

	Ck(tree.Insert(target))
	Tassert(t, tree.Size() == wantSize, "expected size restored after re-insert, got %d want %d", tree.Size(), wantSize)

	gotKeys := tree.InorderKeys()
	Tassert(t, len(gotKeys) == len(wantKeys), "expected %d keys, got %d", len(wantKeys), len(gotKeys))
	for i := range wantKeys {
		Tassert(t, wantKeys[i].Equal(gotKeys[i]), "inorder key %d mismatch: want %v got %v", i, wantKeys[i], gotKeys[i])
	}

	Ck(tree.Verify())
}

func TestDeleteOneOfTwoEventsOnSameNodeKeepsNode(t *testing.T) {
	tree := New()
	e1 := mustEvent(t, "a", 1, 0, 2, 0)
	e2 := mustEvent(t, "b", 1, 0, 2, 0)
	Ck(tree.Insert(e1))
	Ck(tree.Insert(e2))
	Tassert(t, tree.Size() == 1, "two events with the same candidate interval must accumulate on one node")

	Ck(tree.Delete(e1))
	Tassert(t, tree.Size() == 1, "removing one of two events on the same node must not remove the node")

	key, err := e2.TimeSlot()
	Ck(err)
	remaining, err := tree.Search(key)
	Ck(err)
	Tassert(t, len(remaining) == 1 && remaining[0] == e2, "expected only e2 to remain at the shared key")
}

func TestSearchMissingKeyIsNotFound(t *testing.T) {
	tree := New()
	Ck(tree.Insert(mustEvent(t, "a", 1, 0, 2, 0)))
	_, err := tree.Search(interval.New(tm(9, 0), tm(10, 0)))
	Tassert(t, err != nil, "expected NotFound for an absent key")
}

func TestManyInsertsStayBalanced(t *testing.T) {
	tree := New()
	for i := 0; i < 50; i++ {
		h := i % 20
		e := mustEvent(t, Spf("task-%d", i), h, 0, h, 30)
		Ck(tree.Insert(e))
	}
	Ck(tree.Verify())
}
