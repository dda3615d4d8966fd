// Package timetree implements the augmented, self-balancing interval
// tree that indexes events by their candidate placement intervals, plus
// the sweep-line extractor that turns a query's hits into pairwise
// overlap relations.
package timetree

import (
	"time"

	"github.com/stevegt/goadapt"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
)

// Node is an augmented AVL node keyed by a candidate interval. Every
// node carries the subtree's max end and min start so that
// overlapSearch can prune both children. Nodes are only ever touched
// while holding the owning Tree's lock; they have no lock of their own.
type Node struct {
	key    interval.TimeInterval
	events []*event.Event

	max time.Time
	min time.Time

	height int
	left   *Node
	right  *Node
}

func newNode(e *event.Event, key interval.TimeInterval) *Node {
	return &Node{
		key:    key,
		events: []*event.Event{e},
		max:    key.End(),
		min:    key.Start(),
		height: 1,
	}
}

func nodeHeight(n *Node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor(n *Node) int {
	return nodeHeight(n.left) - nodeHeight(n.right)
}

// updateAugmentation recomputes height, max and min from key and both
// children. It must run bottom-up after any structural change.
func updateAugmentation(n *Node) {
	n.height = 1 + maxInt(nodeHeight(n.left), nodeHeight(n.right))

	max := n.key.End()
	if n.left != nil && n.left.max.After(max) {
		max = n.left.max
	}
	if n.right != nil && n.right.max.After(max) {
		max = n.right.max
	}
	n.max = max

	min := n.key.Start()
	if n.left != nil && n.left.min.Before(min) {
		min = n.left.min
	}
	if n.right != nil && n.right.min.Before(min) {
		min = n.right.min
	}
	n.min = min
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// removeEvent removes e from node's event list by identity.
func removeEvent(n *Node, e *event.Event) {
	for i, have := range n.events {
		if have == e {
			n.events = append(n.events[:i], n.events[i+1:]...)
			return
		}
	}
	goadapt.Assert(false, "event not present on node being deleted")
}

func minValueNode(n *Node) *Node {
	current := n
	for current.left != nil {
		current = current.left
	}
	return current
}

// rotateLeft performs the standard AVL left rotation, recomputing
// height/max/min for both affected nodes.
func rotateLeft(n *Node) *Node {
	child := n.right
	grandchild := child.left

	child.left = n
	n.right = grandchild

	updateAugmentation(n)
	updateAugmentation(child)
	return child
}

// rotateRight performs the standard AVL right rotation.
func rotateRight(n *Node) *Node {
	child := n.left
	grandchild := child.right

	child.right = n
	n.left = grandchild

	updateAugmentation(n)
	updateAugmentation(child)
	return child
}

// rebalance restores the AVL property at n using the standard
// balance-factor decision, applicable after either an insert or a
// delete since it does not assume which key changed.
func rebalance(n *Node) *Node {
	bal := balanceFactor(n)
	if bal > 1 {
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	}
	if bal < -1 {
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}
