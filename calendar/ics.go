package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/aidenh/vega/task"
)

// icsRecurrenceHorizon bounds how far ImportICS will expand a
// recurring VEVENT, matching task.ExpandRecurrence's own bound.
const icsRecurrenceHorizon = 365 * 24 * time.Hour

// ExportICS walks every event scheduled in cal's TimeTree and writes
// one VEVENT per (event, candidate interval) pair, in ascending
// start-time order. UID is derived from title and start time so the
// same schedule always serializes to the same UIDs.
func ExportICS(w io.Writer, cal *Calendar) error {
	ics := ical.NewCalendar()
	ics.Props.SetText(ical.PropVersion, "2.0")
	ics.Props.SetText(ical.PropProductID, "-//aidenh/vega//NONSGML Calendar//EN")

	for _, hit := range cal.tree.AllHits() {
		title := hit.Event.Task().Title()
		ve := ical.NewEvent()
		ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@vega", title, hit.Key.Start().Unix()))
		ve.Props.SetText(ical.PropSummary, title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
		ve.Props.SetDateTime(ical.PropDateTimeStart, hit.Key.Start())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, hit.Key.End())
		ics.Children = append(ics.Children, ve.Component)
	}

	return ical.NewEncoder(w).Encode(ics)
}

// ImportICS decodes a VCALENDAR and reconstructs one TemporalTask per
// VEVENT, expanding any RRULE into concrete occurrences via rrule-go
// directly (the tree only ever holds concrete instances, so no
// recurrence metadata survives the round trip). Import never touches a
// Calendar; the caller schedules the results via ScheduleEvent.
func ImportICS(r io.Reader) ([]*task.TemporalTask, error) {
	ics, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decoding ics: %w", err)
	}

	var tasks []*task.TemporalTask
	for _, ve := range ics.Events() {
		title, err := ve.Props.Text(ical.PropSummary)
		if err != nil {
			return nil, fmt.Errorf("event missing summary: %w", err)
		}
		start, err := ve.DateTimeStart(time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %q missing DTSTART: %w", title, err)
		}
		end, err := eventEnd(ve, start)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", title, err)
		}

		rruleProp := ve.Props.Get(ical.PropRecurrenceRule)
		if rruleProp == nil {
			tt, err := task.NewTemporalTask(title, "", start, end, nil, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", title, err)
			}
			tasks = append(tasks, tt)
			continue
		}

		expanded, err := expandICSRecurrence(ve, title, start, end)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, expanded...)
	}
	return tasks, nil
}

func eventEnd(ve ical.Event, start time.Time) (time.Time, error) {
	end, err := ve.DateTimeEnd(time.UTC)
	if err == nil {
		return end, nil
	}
	durProp := ve.Props.Get(ical.PropDuration)
	if durProp == nil {
		return time.Time{}, fmt.Errorf("no DTEND or DURATION")
	}
	dur, err := durProp.Duration()
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing DURATION: %w", err)
	}
	return start.Add(dur), nil
}

func expandICSRecurrence(ve ical.Event, title string, start, end time.Time) ([]*task.TemporalTask, error) {
	roption, err := ve.Props.RecurrenceRule()
	if err != nil {
		return nil, fmt.Errorf("event %q: parsing RRULE: %w", title, err)
	}
	roption.Dtstart = start

	rule, err := rrule.NewRRule(*roption)
	if err != nil {
		return nil, fmt.Errorf("event %q: building rule: %w", title, err)
	}

	duration := end.Sub(start)
	occurrences := rule.Between(start, start.Add(icsRecurrenceHorizon), true)

	tasks := make([]*task.TemporalTask, 0, len(occurrences))
	for i, occ := range occurrences {
		tt, err := task.NewTemporalTask(fmt.Sprintf("%s #%d", title, i+1), "", occ, occ.Add(duration), nil, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("event %q occurrence %d: %w", title, i+1, err)
		}
		tasks = append(tasks, tt)
	}
	return tasks, nil
}
