package monitor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSubscriberActive is returned by Register when the subscriber already
// has an Active task. At most one active monitor per subscriber.
var ErrSubscriberActive = errors.New("monitor: subscriber already has an active task")

// Registry holds the monitoring tasks. It is the only component that
// retires a task: to Completed when the executor reports success, or to
// Cancelled on explicit request. The polling loop and the control surface
// touch it from different goroutines, so all access is behind the lock.
type Registry struct {
	mu    sync.Mutex
	tasks []*Task
}

func NewRegistry() *Registry { return &Registry{} }

// Register validates the task and adds it as Active. A validation failure
// or an existing Active task for the same subscriber rejects the request
// without mutating the Registry.
func (r *Registry) Register(t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tasks {
		if existing.Subscriber == t.Subscriber && existing.Status == StatusActive {
			return ErrSubscriberActive
		}
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Status = StatusActive
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.tasks = append(r.tasks, t)
	return nil
}

// Cancel marks all of the subscriber's Active tasks Cancelled and returns
// how many were cancelled.
func (r *Registry) Cancel(subscriber string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tasks {
		if t.Subscriber == subscriber && t.Status == StatusActive {
			t.Status = StatusCancelled
			n++
		}
	}
	return n
}

// Complete retires the task with the given id after a successful booking.
func (r *Registry) Complete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.ID == id && t.Status == StatusActive {
			t.Status = StatusCompleted
			return
		}
	}
}

// IsActive reports whether the task with the given id is still Active.
// The polling loop checks this before every probe so a cancellation takes
// effect at the next probe boundary.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return t.Status == StatusActive
		}
	}
	return false
}

// Active returns the Active tasks in registration order.
func (r *Registry) Active() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Task
	for _, t := range r.tasks {
		if t.Status == StatusActive {
			out = append(out, t)
		}
	}
	return out
}

// List returns a read-only snapshot of every task, newest last.
func (r *Registry) List() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = *t
	}
	return out
}
