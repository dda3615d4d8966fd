// Package task implements the scheduling core's unit of work: a plain
// Task and the TemporalTask that adds a placement window and a set of
// candidate placement intervals.
package task

import (
	"fmt"
	"time"

	"github.com/aidenh/vega/vegaerr"
)

// Task is a title, a description, a completion flag, and an optional
// deadline. It is the capability floor the scheduler needs: a task with
// no placement window at all.
type Task struct {
	title       string
	description string
	completed   bool
	deadline    *time.Time
}

// NewTask constructs a Task. title must be non-empty.
func NewTask(title, description string, deadline *time.Time) (*Task, error) {
	if title == "" {
		return nil, &vegaerr.InvalidTitle{Reason: "title must not be empty"}
	}
	return &Task{title: title, description: description, deadline: deadline}, nil
}

// Title returns the task's title.
func (t *Task) Title() string { return t.title }

// Description returns the task's description.
func (t *Task) Description() string { return t.description }

// Completed reports whether the task has been marked complete.
func (t *Task) Completed() bool { return t.completed }

// Deadline returns the task's deadline, or nil if it has none.
func (t *Task) Deadline() *time.Time { return t.deadline }

// Complete marks the task as completed. Completion is monotonic:
// once true, Complete is idempotent and there is no way back to false.
func (t *Task) Complete() { t.completed = true }

// Equal reports structural equality by (title, description, completed,
// deadline).
func (t *Task) Equal(other *Task) bool {
	if other == nil {
		return false
	}
	if t.title != other.title || t.description != other.description || t.completed != other.completed {
		return false
	}
	if (t.deadline == nil) != (other.deadline == nil) {
		return false
	}
	if t.deadline != nil && !t.deadline.Equal(*other.deadline) {
		return false
	}
	return true
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(title=%q, completed=%v, deadline=%v)", t.title, t.completed, t.deadline)
}
