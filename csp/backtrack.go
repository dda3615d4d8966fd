package csp

import (
	"github.com/aidenh/vega/event"
	"github.com/aidenh/vega/interval"
	"github.com/aidenh/vega/vegaerr"
)

type undoEntry struct {
	event *event.Event
	prior interval.TimeInterval
	had   bool
}

type solver struct {
	problem     *Problem
	assignments map[*event.Event]interval.TimeInterval
	undo        []undoEntry
}

// Solve runs AC3 (if it has not already been run) and then backtracking
// search, returning a full assignment or InfeasibleSchedule.
func (p *Problem) Solve() (map[*event.Event]interval.TimeInterval, error) {
	if p.constraints == nil {
		if err := p.AC3(); err != nil {
			return nil, err
		}
	}
	s := &solver{
		problem:     p,
		assignments: make(map[*event.Event]interval.TimeInterval, len(p.vars)),
	}
	if !s.backtrack() {
		return nil, &vegaerr.InfeasibleSchedule{}
	}
	return s.assignments, nil
}

func (s *solver) backtrack() bool {
	e := s.firstUnassigned()
	if e == nil {
		return true
	}
	for _, iv := range s.problem.Domains[e] {
		cp := s.checkpoint()
		if s.assign(e, iv) && s.backtrack() {
			return true
		}
		s.rollback(cp)
	}
	return false
}

func (s *solver) firstUnassigned() *event.Event {
	for _, e := range s.problem.vars {
		if _, ok := s.assignments[e]; !ok {
			return e
		}
	}
	return nil
}

func (s *solver) checkpoint() int { return len(s.undo) }

func (s *solver) rollback(cp int) {
	for len(s.undo) > cp {
		last := s.undo[len(s.undo)-1]
		s.undo = s.undo[:len(s.undo)-1]
		if last.had {
			s.assignments[last.event] = last.prior
		} else {
			delete(s.assignments, last.event)
		}
	}
}

// assign tries to place e at iv. If an already-assigned neighbor's
// interval overlaps iv, both are narrowed via Split; assign fails
// (leaving the undo stack untouched) the instant any split fails.
// Every changed assignment, plus the new one, is pushed onto the undo
// stack only after every split in the batch has succeeded.
func (s *solver) assign(e *event.Event, iv interval.TimeInterval) bool {
	if _, already := s.assignments[e]; already {
		return false
	}
	dE := s.problem.durations[e]

	type change struct {
		event *event.Event
		iv    interval.TimeInterval
	}
	var changes []change

	for _, n := range s.problem.neighborsOf(e) {
		other, ok := s.assignments[n]
		if !ok || !iv.Overlaps(other) {
			continue
		}
		newE, newN, ok := Split(iv, other, dE, s.problem.durations[n])
		if !ok {
			return false
		}
		iv = newE
		changes = append(changes, change{event: n, iv: newN})
	}

	for _, c := range changes {
		prior, had := s.assignments[c.event]
		s.undo = append(s.undo, undoEntry{event: c.event, prior: prior, had: had})
		s.assignments[c.event] = c.iv
	}
	s.undo = append(s.undo, undoEntry{event: e, had: false})
	s.assignments[e] = iv
	return true
}
