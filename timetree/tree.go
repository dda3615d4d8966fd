package timetree

import (
	"fmt"

	"github.com/reugn/async"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/vegaerr"
)

// Hit pairs an Event with the candidate interval that matched a query,
// so callers can tell which candidate was responsible.
type Hit struct {
	Event *event.Event
	Key   interval.TimeInterval
}

// Tree is an augmented AVL interval tree storing (interval -> events).
// A Tree's zero value is not ready for use; construct one with New.
type Tree struct {
	root *Node
	size int
	mu   async.ReentrantLock
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{}
}

// Size returns the number of distinct candidate-interval keys stored,
// not the number of events (a key may hold several events).
func (t *Tree) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Insert adds e to the tree once per candidate interval in its
// TemporalTask's schedule intervals. It fails if e's task is not
// temporal.
func (t *Tree) Insert(e *event.Event) error {
	tt, ok := e.AsTemporal()
	if !ok {
		return fmt.Errorf("timetree: event task must be a TemporalTask to be inserted")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range tt.ScheduleIntervals() {
		created := false
		t.root = insertRecursive(t.root, e, key, &created)
		if created {
			t.size++
		}
	}
	return nil
}

func insertRecursive(n *Node, e *event.Event, key interval.TimeInterval, created *bool) *Node {
	if n == nil {
		*created = true
		return newNode(e, key)
	}
	switch {
	case key.Less(n.key):
		n.left = insertRecursive(n.left, e, key, created)
	case n.key.Less(key):
		n.right = insertRecursive(n.right, e, key, created)
	default:
		n.events = append(n.events, e)
		return n
	}
	updateAugmentation(n)
	return rebalance(n)
}

// Delete removes e from the tree once per candidate interval in its
// TemporalTask's schedule intervals. A node whose event list becomes
// empty is spliced out using the standard two-child BST delete
// (transplant the in-order successor, then remove the successor node
// outright).
func (t *Tree) Delete(e *event.Event) error {
	tt, ok := e.AsTemporal()
	if !ok {
		return fmt.Errorf("timetree: event task must be a TemporalTask to be deleted")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range tt.ScheduleIntervals() {
		deleted := false
		t.root = deleteRecursive(t.root, e, key, &deleted)
		if deleted {
			t.size--
		}
	}
	return nil
}

func deleteRecursive(n *Node, e *event.Event, key interval.TimeInterval, deleted *bool) *Node {
	if n == nil {
		return nil
	}
	switch {
	case key.Less(n.key):
		n.left = deleteRecursive(n.left, e, key, deleted)
	case n.key.Less(key):
		n.right = deleteRecursive(n.right, e, key, deleted)
	default:
		removeEvent(n, e)
		if len(n.events) == 0 {
			*deleted = true
			switch {
			case n.left == nil:
				n = n.right
			case n.right == nil:
				n = n.left
			default:
				succ := minValueNode(n.right)
				n.key = succ.key
				n.events = succ.events
				n.right = deleteNodeByKey(n.right, succ.key)
			}
		}
	}
	if n == nil {
		return nil
	}
	updateAugmentation(n)
	return rebalance(n)
}

// deleteNodeByKey removes a node matching key unconditionally, ignoring
// its event list. It is used only to splice out a successor node whose
// content has already been transplanted by the caller.
func deleteNodeByKey(n *Node, key interval.TimeInterval) *Node {
	if n == nil {
		return nil
	}
	switch {
	case key.Less(n.key):
		n.left = deleteNodeByKey(n.left, key)
	case n.key.Less(key):
		n.right = deleteNodeByKey(n.right, key)
	default:
		switch {
		case n.left == nil:
			n = n.right
		case n.right == nil:
			n = n.left
		default:
			succ := minValueNode(n.right)
			n.key = succ.key
			n.events = succ.events
			n.right = deleteNodeByKey(n.right, succ.key)
		}
	}
	if n == nil {
		return nil
	}
	updateAugmentation(n)
	return rebalance(n)
}

// Search returns the events stored under the exact key, or a NotFound
// error if no node has that key.
func (t *Tree) Search(key interval.TimeInterval) ([]*event.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.root
	for current != nil {
		switch {
		case key.Equal(current.key):
			out := make([]*event.Event, len(current.events))
			copy(out, current.events)
			return out, nil
		case key.Less(current.key):
			current = current.left
		default:
			current = current.right
		}
	}
	return nil, &vegaerr.NotFound{Key: key.String()}
}

// OverlapSearch returns one Hit per (event, candidate interval) pair
// where the candidate interval overlaps query.
func (t *Tree) OverlapSearch(query interval.TimeInterval) []Hit {
	t.mu.Lock()
	defer t.mu.Unlock()
	var hits []Hit
	overlapSearchRecursive(t.root, query, &hits)
	return hits
}

func overlapSearchRecursive(n *Node, query interval.TimeInterval, hits *[]Hit) {
	if n == nil {
		return
	}
	if n.key.Overlaps(query) {
		for _, e := range n.events {
			*hits = append(*hits, Hit{Event: e, Key: n.key})
		}
	}
	if n.left != nil && !n.left.max.Before(query.Start()) {
		overlapSearchRecursive(n.left, query, hits)
	}
	if n.right != nil && !n.right.min.After(query.End()) {
		overlapSearchRecursive(n.right, query, hits)
	}
}

// InorderKeys returns every stored key in ascending order, for
// round-trip and invariant tests.
func (t *Tree) InorderKeys() []interval.TimeInterval {
	t.mu.Lock()
	defer t.mu.Unlock()
	var keys []interval.TimeInterval
	inorderRecursive(t.root, &keys)
	return keys
}

func inorderRecursive(n *Node, keys *[]interval.TimeInterval) {
	if n == nil {
		return
	}
	inorderRecursive(n.left, keys)
	*keys = append(*keys, n.key)
	inorderRecursive(n.right, keys)
}

// AllHits returns one Hit per (event, key) pair stored in the tree, in
// ascending key order. Used by exporters that need every scheduled
// event rather than a windowed query.
func (t *Tree) AllHits() []Hit {
	t.mu.Lock()
	defer t.mu.Unlock()
	var hits []Hit
	allHitsRecursive(t.root, &hits)
	return hits
}

func allHitsRecursive(n *Node, hits *[]Hit) {
	if n == nil {
		return
	}
	allHitsRecursive(n.left, hits)
	for _, e := range n.events {
		*hits = append(*hits, Hit{Event: e, Key: n.key})
	}
	allHitsRecursive(n.right, hits)
}
