package task

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxRecurrenceHorizon bounds how far forward ExpandRecurrence will look
// for occurrences when the rule itself has no COUNT or UNTIL. Recurrence
// expansion is a concrete-instance helper, not an open-ended generator.
const maxRecurrenceHorizon = 365 * 24 * time.Hour

// ExpandRecurrence parses an RFC 5545 RRULE string (without the
// "RRULE:" prefix, e.g. "FREQ=WEEKLY;BYDAY=MO,WE,FR") and returns one
// TemporalTask per concrete occurrence, each with the nominal window
// [occurrence, occurrence+duration] and no additional candidate
// intervals. Expansion stops after limit occurrences or one year past
// dtstart, whichever comes first: recurrence expansion never runs
// unbounded.
func ExpandRecurrence(title, description, rule string, dtstart time.Time, duration time.Duration, limit int) ([]*TemporalTask, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	set, err := rrule.StrSliceToRRuleSet([]string{"RRULE:" + rule})
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence rule: %w", err)
	}
	set.DTStart(dtstart)

	occurrences := set.Between(dtstart, dtstart.Add(maxRecurrenceHorizon), true)
	if len(occurrences) > limit {
		occurrences = occurrences[:limit]
	}

	tasks := make([]*TemporalTask, 0, len(occurrences))
	for i, occ := range occurrences {
		instanceTitle := fmt.Sprintf("%s #%d", title, i+1)
		tt, err := NewTemporalTask(instanceTitle, description, occ, occ.Add(duration), nil, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("occurrence %d: %w", i+1, err)
		}
		tasks = append(tasks, tt)
	}
	return tasks, nil
}
