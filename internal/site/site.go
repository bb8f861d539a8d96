// Package site defines the capability surface the monitor needs from the
// reservation site. The tracker never touches markup; it only speaks this
// interface. The concrete WebDriver-backed implementation lives in
// internal/gaiola.
package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/gaiola-watcher/internal/catalog"
)

// Subject is the person on whose behalf a booking is made.
type Subject struct {
	Name         string
	Surname      string
	Sex          string // single letter as the form expects, "M"/"F"
	BirthDate    string // dd/mm/yyyy, typed into the form verbatim
	Birthplace   string // lookup query for the birthplace dropdown
	TaxCode      string
	Email        string
	Country      string // residence lookup fields
	Province     string
	Municipality string // lookup query for the municipality dropdown
}

// FullName is the store key for the subject's booking records.
func (s Subject) FullName() string {
	return strings.TrimSpace(s.Name + " " + s.Surname)
}

func (s Subject) Validate() error {
	var missing []string
	for field, v := range map[string]string{
		"name": s.Name, "surname": s.Surname, "sex": s.Sex,
		"birth date": s.BirthDate, "tax code": s.TaxCode,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("subject %s: missing %s", s.Name, strings.Join(missing, ", "))
	}
	if _, err := catalog.ParseLabel(s.BirthDate); err != nil {
		return fmt.Errorf("subject %s: invalid birth date: %w", s.Name, err)
	}
	return nil
}

// Contact holds the shared contact fields of the booking form.
type Contact struct {
	Email string
	Phone string
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("contact: email is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errors.New("contact: phone is required")
	}
	return nil
}

// ErrConfirmationNotReached is returned by SubmitBookingForm when the
// adapter never lands on a location a confirmation code can be extracted
// from.
var ErrConfirmationNotReached = errors.New("site: confirmation page not reached")

// Adapter is the single shared browser session the monitor drives. It is
// not safe for concurrent use; the polling loop owns it exclusively.
type Adapter interface {
	// ListBookableDays returns the labels of the bookable day controls in
	// the site's native layout order, excluding ones marked unavailable.
	ListBookableDays(ctx context.Context) ([]string, error)

	// SelectDay activates the day control with the given label.
	SelectDay(ctx context.Context, label string) error

	// SelectShift activates one of the two shift radios. The shared
	// availability readout recomputes asynchronously after this.
	SelectShift(ctx context.Context, shift catalog.Shift) error

	// ReadAvailabilityCount reads the shared availability readout for the
	// currently selected day/shift.
	ReadAvailabilityCount(ctx context.Context) (int, error)

	// SubmitBookingForm opens the booking form for the currently selected
	// day/shift, populates it for the subject and contact, submits, and
	// returns the confirmation code.
	SubmitBookingForm(ctx context.Context, subject Subject, contact Contact) (string, error)

	// CurrentLocation returns the adapter's current navigation location
	// token (a URL for the web implementation).
	CurrentLocation(ctx context.Context) (string, error)

	// Reload re-navigates to the baseline booking page, restoring a known
	// state after an error or a completed booking.
	Reload(ctx context.Context) error
}
