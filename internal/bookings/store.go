// Package bookings persists one record per confirmed booking, keyed by
// subject name and confirmation code, so a booking can be looked up later
// for cancellation. Records survive process restarts.
package bookings

import (
	"context"
	"errors"
	"time"
)

// Record is one confirmed booking.
type Record struct {
	SubjectName string
	Code        string
	CreatedAt   time.Time
}

// ErrNotFound is returned by FindByName when no record matches.
var ErrNotFound = errors.New("bookings: not found")

// Store is the durable booking-record store. Records are created only by
// the booking executor on confirmed success and deleted only by an
// explicit cancellation operation.
type Store interface {
	Put(ctx context.Context, subjectName, code string) error
	FindByName(ctx context.Context, subjectName string) (string, error)
	Delete(ctx context.Context, subjectName, code string) (bool, error)
	List(ctx context.Context) ([]Record, error)
}
