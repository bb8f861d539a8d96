package catalog

import (
	"context"
	"errors"
	"log/slog"
)

// DayLister is the slice of the site adapter the builder needs: the labels
// of the currently bookable day controls, in the site's native layout order.
type DayLister interface {
	ListBookableDays(ctx context.Context) ([]string, error)
}

// ErrNoDays is returned when the adapter reports zero day controls. Callers
// retry on the next cycle rather than treating it as terminal.
var ErrNoDays = errors.New("catalog: no bookable day controls on page")

// Build enumerates the site's day controls and turns them into a Catalog.
// Site order is preserved (later logic keys off the last entry). Labels
// that do not parse as calendar dates are skipped and logged, not fatal.
func Build(ctx context.Context, lister DayLister) (*Catalog, error) {
	labels, err := lister.ListBookableDays(ctx)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, ErrNoDays
	}

	days := make([]*Day, 0, len(labels))
	for _, label := range labels {
		date, err := ParseLabel(label)
		if err != nil {
			slog.Warn("skipping day control with unparseable label", "label", label, "err", err)
			continue
		}
		days = append(days, &Day{
			Date:     date,
			Label:    label,
			Weekday:  date.Weekday().String(),
			Position: len(days),
		})
	}
	return New(days), nil
}
