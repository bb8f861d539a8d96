package gaiola

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/gaiola-watcher/internal/catalog"
)

// Page selectors. The day buttons and the availability readout are
// rendered by the site's booking widget; the 904 suffix is its instance
// id.
const (
	selDayButtons     = ".bottoni_data_904"
	classUnavailable  = "btn-danger"
	selMorningShift   = "[for='904_turno_1']"
	selAfternoonShift = "[for='904_turno_2']"
	selAvailability   = "#disponibilita_effettiva"
	selCookieBanner   = "[data-hook='consent-banner-close-button']"
)

// Adapter implements site.Adapter over one WebDriver session.
type Adapter struct {
	client     *Client
	bookingURL string
}

func NewAdapter(client *Client, bookingURL string) *Adapter {
	return &Adapter{client: client, bookingURL: bookingURL}
}

// Open starts the session and navigates to the booking page.
func (a *Adapter) Open(ctx context.Context) error {
	if err := a.client.StartSession(ctx); err != nil {
		return err
	}
	return a.Reload(ctx)
}

// Close tears down the browser session.
func (a *Adapter) Close(ctx context.Context) error {
	return a.client.DeleteSession(ctx)
}

// Reload navigates back to the baseline booking page and dismisses the
// cookie banner if it shows up.
func (a *Adapter) Reload(ctx context.Context) error {
	if err := a.client.Navigate(ctx, a.bookingURL); err != nil {
		return fmt.Errorf("navigate to booking page: %w", err)
	}
	a.pause(ctx, 2*time.Second)

	if banner, err := a.client.Find(ctx, selCookieBanner); err == nil {
		if cerr := a.click(ctx, banner); cerr != nil {
			slog.Debug("cookie banner dismiss failed", "err", cerr)
		}
	}
	return nil
}

func (a *Adapter) CurrentLocation(ctx context.Context) (string, error) {
	return a.client.CurrentURL(ctx)
}

// ListBookableDays enumerates the day buttons in page order, excluding
// ones marked unavailable.
func (a *Adapter) ListBookableDays(ctx context.Context) ([]string, error) {
	els, err := a.client.FindAll(ctx, selDayButtons)
	if err != nil {
		return nil, fmt.Errorf("list day buttons: %w", err)
	}

	var labels []string
	for _, el := range els {
		classes, err := a.client.Attribute(ctx, el, "class")
		if err != nil {
			return nil, err
		}
		if hasClass(classes, classUnavailable) {
			continue
		}
		text, err := a.client.Text(ctx, el)
		if err != nil {
			return nil, err
		}
		labels = append(labels, strings.TrimSpace(text))
	}
	return labels, nil
}

// SelectDay activates the day button whose label matches. Buttons are
// re-located on every call so a page reload between polls cannot leave a
// stale element reference behind.
func (a *Adapter) SelectDay(ctx context.Context, label string) error {
	els, err := a.client.FindAll(ctx, selDayButtons)
	if err != nil {
		return fmt.Errorf("list day buttons: %w", err)
	}
	for _, el := range els {
		text, err := a.client.Text(ctx, el)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == label {
			return a.click(ctx, el)
		}
	}
	return fmt.Errorf("day button %q not found", label)
}

func (a *Adapter) SelectShift(ctx context.Context, shift catalog.Shift) error {
	sel := selMorningShift
	if shift == catalog.Afternoon {
		sel = selAfternoonShift
	}
	el, err := a.client.Find(ctx, sel)
	if err != nil {
		return fmt.Errorf("find %s shift radio: %w", shift, err)
	}
	return a.click(ctx, el)
}

// ReadAvailabilityCount parses the shared availability readout, a label
// of the form "Disponibilita effettiva: N".
func (a *Adapter) ReadAvailabilityCount(ctx context.Context) (int, error) {
	el, err := a.client.Find(ctx, selAvailability)
	if err != nil {
		return 0, fmt.Errorf("find availability readout: %w", err)
	}
	text, err := a.client.Text(ctx, el)
	if err != nil {
		return 0, err
	}
	return parseAvailability(text)
}

func parseAvailability(text string) (int, error) {
	idx := strings.LastIndex(text, ":")
	if idx < 0 || idx == len(text)-1 {
		return 0, fmt.Errorf("unexpected availability text %q", text)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text[idx+1:]))
	if err != nil {
		return 0, fmt.Errorf("unexpected availability text %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative availability %d", n)
	}
	return n, nil
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

// pause is a context-aware sleep for the page's asynchronous updates.
func (a *Adapter) pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
