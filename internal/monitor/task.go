// Package monitor implements the availability differential tracker and
// booking trigger: monitoring tasks, the two-read probe engine, the
// one-shot booking executor, and the polling loop that multiplexes all
// tasks onto the single shared site-adapter session.
package monitor

import (
	"fmt"
	"time"

	"github.com/example/gaiola-watcher/internal/catalog"
	"github.com/example/gaiola-watcher/internal/site"
)

type TaskStatus string

const (
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusCancelled TaskStatus = "cancelled"
)

// Task is one subscriber-requested monitoring target. Fields are immutable
// after registration except Status, which only the Registry mutates.
type Task struct {
	ID         string
	Subscriber string
	Subject    site.Subject
	Contact    site.Contact
	Dates      []string // target date labels, dd/mm/yyyy
	Shifts     []catalog.Shift
	Status     TaskStatus
	CreatedAt  time.Time
}

// Validate rejects a malformed task at registration time, before any
// polling starts.
func (t *Task) Validate() error {
	if t.Subscriber == "" {
		return fmt.Errorf("task: subscriber is required")
	}
	if err := t.Subject.Validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if err := t.Contact.Validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if len(t.Dates) == 0 {
		return fmt.Errorf("task: at least one target date is required")
	}
	for _, label := range t.Dates {
		if _, err := catalog.ParseLabel(label); err != nil {
			return fmt.Errorf("task: %w", err)
		}
	}
	if len(t.Shifts) == 0 {
		return fmt.Errorf("task: at least one shift is required")
	}
	return nil
}

// WantsDate reports whether label is one of the task's target dates.
func (t *Task) WantsDate(label string) bool {
	for _, d := range t.Dates {
		if d == label {
			return true
		}
	}
	return false
}
