package csp

import (
	"sort"
	"time"

	"github.com/stevegt/goadapt"

	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/timetree"
	"github.com/aidenh/vega/vegaerr"
)

type arc struct {
	X, Y *event.Event
}

// Problem holds the variables (events), their domains (candidate
// intervals), and the arc-consistency constraints derived between
// events that share at least one overlapping pair of candidates.
type Problem struct {
	Domains map[*event.Event][]interval.TimeInterval

	durations   map[*event.Event]time.Duration
	constraints map[*event.Event]map[*event.Event]map[interval.TimeInterval]map[interval.TimeInterval]struct{}
	arcs        []arc
	vars        []*event.Event
}

// NewProblem builds a Problem from a day's overlap-search hits and the
// sweep-line pairs derived from them. Every event in hits becomes a
// variable, even one with no arcs at all: a fully disjoint event still
// gets a domain of size one and backtracking assigns it directly, with
// no arc ever touching it. Arcs come only from pairs.
func NewProblem(hits []timetree.Hit, pairs timetree.Pairs) (*Problem, error) {
	p := &Problem{
		Domains:   make(map[*event.Event][]interval.TimeInterval),
		durations: make(map[*event.Event]time.Duration),
	}
	hitKeys := make(map[*event.Event]map[interval.TimeInterval]bool)
	for _, h := range hits {
		if hitKeys[h.Event] == nil {
			hitKeys[h.Event] = make(map[interval.TimeInterval]bool)
		}
		hitKeys[h.Event][h.Key] = true
	}
	seen := make(map[*event.Event]bool)
	for _, h := range hits {
		if seen[h.Event] {
			continue
		}
		seen[h.Event] = true
		ivs, err := h.Event.ScheduleIntervals()
		if err != nil {
			return nil, err
		}
		d, err := h.Event.Duration()
		if err != nil {
			return nil, err
		}
		// The domain is the event's candidates that the query hit, in the
		// task's own storage order.
		domain := make([]interval.TimeInterval, 0, len(hitKeys[h.Event]))
		for _, iv := range ivs {
			if hitKeys[h.Event][iv] {
				domain = append(domain, iv)
			}
		}
		p.Domains[h.Event] = domain
		p.durations[h.Event] = d
		p.vars = append(p.vars, h.Event)
	}
	for pr := range pairs {
		p.arcs = append(p.arcs, arc{X: pr.A, Y: pr.B})
	}
	sort.Slice(p.vars, func(i, j int) bool {
		return p.vars[i].Task().Title() < p.vars[j].Task().Title()
	})
	return p, nil
}

// AC3 runs arc consistency to a fixed point, pruning each event's
// domain of any candidate with no compatible partner in a neighbor's
// domain. It is idempotent: running it again on an already-consistent
// Problem leaves every domain unchanged.
func (p *Problem) AC3() error {
	p.constraints = make(map[*event.Event]map[*event.Event]map[interval.TimeInterval]map[interval.TimeInterval]struct{})

	queue := append([]arc(nil), p.arcs...)
	inQueue := make(map[arc]bool, len(queue))
	for _, a := range queue {
		inQueue[a] = true
	}

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		inQueue[a] = false
		if err := p.processArc(a.X, a.Y, &queue, inQueue); err != nil {
			return err
		}
	}
	return nil
}

func (p *Problem) ensureConstraintMaps(x, y *event.Event) {
	if p.constraints[x] == nil {
		p.constraints[x] = make(map[*event.Event]map[interval.TimeInterval]map[interval.TimeInterval]struct{})
	}
	if p.constraints[x][y] == nil {
		p.constraints[x][y] = make(map[interval.TimeInterval]map[interval.TimeInterval]struct{})
	}
}

func (p *Problem) processArc(x, y *event.Event, queue *[]arc, inQueue map[arc]bool) error {
	p.ensureConstraintMaps(x, y)
	p.ensureConstraintMaps(y, x)
	dx, dy := p.durations[x], p.durations[y]

	// Snapshot domain(x) before revise can mutate it underneath this loop.
	xDomain := append([]interval.TimeInterval(nil), p.Domains[x]...)
	for _, i := range xDomain {
		supported := false
		for _, j := range p.Domains[y] {
			if Fit(i, j, dx, dy) {
				if p.constraints[x][y][i] == nil {
					p.constraints[x][y][i] = make(map[interval.TimeInterval]struct{})
				}
				if p.constraints[y][x][j] == nil {
					p.constraints[y][x][j] = make(map[interval.TimeInterval]struct{})
				}
				p.constraints[x][y][i][j] = struct{}{}
				p.constraints[y][x][j][i] = struct{}{}
				supported = true
			}
		}
		if !supported {
			if err := p.revise(x, y, i, queue, inQueue); err != nil {
				return err
			}
		}
	}
	return nil
}

// revise removes bad from domain(x), then propagates the removal to
// every other neighbor of x whose constraint set referenced bad,
// recursing when that neighbor's own support set for some value is
// exhausted. Returns InfeasibleSchedule the instant a domain empties.
func (p *Problem) revise(x, y *event.Event, bad interval.TimeInterval, queue *[]arc, inQueue map[arc]bool) error {
	p.Domains[x] = removeInterval(p.Domains[x], bad)
	if len(p.Domains[x]) == 0 {
		return &vegaerr.InfeasibleSchedule{Culprit: x.Task().Title()}
	}

	for z := range p.constraints[x] {
		if z == y {
			continue
		}
		zx := arc{X: z, Y: x}
		if !inQueue[zx] {
			*queue = append(*queue, zx)
			inQueue[zx] = true
		}

		zSet, ok := p.constraints[x][z][bad]
		if !ok {
			continue
		}
		// Snapshot before mutating constraints[z][x] inside the loop.
		zValues := make([]interval.TimeInterval, 0, len(zSet))
		for zv := range zSet {
			zValues = append(zValues, zv)
		}
		for _, zv := range zValues {
			delete(p.constraints[z][x][zv], bad)
			if len(p.constraints[z][x][zv]) == 0 {
				delete(p.constraints[z][x], zv)
				if err := p.revise(z, x, zv, queue, inQueue); err != nil {
					return err
				}
			}
		}
		delete(p.constraints[x][z], bad)
	}
	return nil
}

func removeInterval(domain []interval.TimeInterval, bad interval.TimeInterval) []interval.TimeInterval {
	for i, iv := range domain {
		if iv.Equal(bad) {
			out := make([]interval.TimeInterval, 0, len(domain)-1)
			out = append(out, domain[:i]...)
			out = append(out, domain[i+1:]...)
			return out
		}
	}
	goadapt.Assert(false, "revise: value not present in domain being pruned")
	return nil
}

func (p *Problem) neighborsOf(e *event.Event) []*event.Event {
	neighbors := make([]*event.Event, 0, len(p.constraints[e]))
	for n := range p.constraints[e] {
		neighbors = append(neighbors, n)
	}
	return neighbors
}
