package timetree

import (
	"sort"
	"time"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
)

// Pair identifies an ordered pair of events that share at least one
// pair of overlapping candidate intervals.
type Pair struct {
	A, B *event.Event
}

// IntervalPair names the specific candidate intervals responsible for
// an overlap between the two events in a Pair.
type IntervalPair struct {
	IA, IB interval.TimeInterval
}

// Pairs maps an ordered event pair to the set of candidate-interval
// pairs that overlap. It is symmetric: (A,B) is present iff (B,A) is.
type Pairs map[Pair]map[IntervalPair]struct{}

type endpointKind int

// kindEnd sorts before kindStart on a timestamp tie, so two candidate
// intervals that touch at a single instant are not treated as
// overlapping by the sweep, even though TimeInterval.Overlaps considers
// the touch point an overlap.
const (
	kindEnd endpointKind = iota
	kindStart
)

type endpoint struct {
	t    time.Time
	kind endpointKind
	hit  Hit
}

// Sweepline turns a set of tree hits into the pairwise overlap
// relation the CSP solver consumes: for every pair of candidate
// intervals (one per hit) that overlap in time, both directions of the
// pair are recorded, keyed by the events they belong to.
func Sweepline(hits []Hit) Pairs {
	pairs := make(Pairs)
	if len(hits) == 0 {
		return pairs
	}

	endpoints := make([]endpoint, 0, len(hits)*2)
	for _, h := range hits {
		endpoints = append(endpoints, endpoint{t: h.Key.Start(), kind: kindStart, hit: h})
		endpoints = append(endpoints, endpoint{t: h.Key.End(), kind: kindEnd, hit: h})
	}
	sort.Slice(endpoints, func(i, j int) bool {
		a, b := endpoints[i], endpoints[j]
		if !a.t.Equal(b.t) {
			return a.t.Before(b.t)
		}
		return a.kind < b.kind
	})

	active := make(map[Hit]struct{})
	for _, ep := range endpoints {
		switch ep.kind {
		case kindStart:
			for other := range active {
				addPair(pairs, ep.hit, other)
				addPair(pairs, other, ep.hit)
			}
			active[ep.hit] = struct{}{}
		case kindEnd:
			delete(active, ep.hit)
		}
	}
	return pairs
}

func addPair(pairs Pairs, from, to Hit) {
	key := Pair{A: from.Event, B: to.Event}
	set, ok := pairs[key]
	if !ok {
		set = make(map[IntervalPair]struct{})
		pairs[key] = set
	}
	set[IntervalPair{IA: from.Key, IB: to.Key}] = struct{}{}
}

// SweeplineOverlapSearch runs OverlapSearch(query) and feeds the hits
// through Sweepline in one step.
func (t *Tree) SweeplineOverlapSearch(query interval.TimeInterval) Pairs {
	return Sweepline(t.OverlapSearch(query))
}
