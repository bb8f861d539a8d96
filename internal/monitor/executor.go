package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/site"
)

// submitter is the slice of the site adapter the executor drives.
type submitter interface {
	SubmitBookingForm(ctx context.Context, subject site.Subject, contact site.Contact) (string, error)
}

// Executor performs the one-shot booking transaction for a genuine
// opening. It is invoked at most once per opening per task; a failed
// attempt is never retried against the same opening, a new opening must be
// independently detected first.
type Executor struct {
	adapter submitter
	store   bookings.Store
}

func NewExecutor(adapter submitter, store bookings.Store) *Executor {
	return &Executor{adapter: adapter, store: store}
}

// Book submits the booking form for the task's subject and returns the
// confirmation code. On success the record is persisted; a persistence
// failure is logged but does not fail the booking, since the site-side
// booking already happened and losing the local record only impairs later
// cancellation lookup. On error the caller must restore the adapter to the
// baseline booking page before the next poll.
func (x *Executor) Book(ctx context.Context, task *Task) (string, error) {
	code, err := x.adapter.SubmitBookingForm(ctx, task.Subject, task.Contact)
	if err != nil {
		return "", fmt.Errorf("booking for %s: %w", task.Subject.FullName(), err)
	}

	if err := x.store.Put(ctx, task.Subject.FullName(), code); err != nil {
		slog.Error("booking confirmed but record not persisted",
			"subject", task.Subject.FullName(), "code", code, "err", err)
	}
	return code, nil
}
