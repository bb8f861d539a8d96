// Package catalog holds the in-memory inventory of bookable days scraped
// from the reservation site, with per-shift availability counters used by
// the differential probe.
package catalog

import (
	"fmt"
	"time"
)

// LabelLayout is the date format the site uses on its day buttons.
const LabelLayout = "02/01/2006"

// Shift is one of the two daily booking windows.
type Shift int

const (
	Morning Shift = iota
	Afternoon
)

func (s Shift) String() string {
	switch s {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	}
	return fmt.Sprintf("shift(%d)", int(s))
}

// Other returns the opposite shift. The two-read probe selects it first so
// a stale availability readout can be told apart from a real one.
func (s Shift) Other() Shift {
	if s == Morning {
		return Afternoon
	}
	return Morning
}

// ParseShift accepts the short forms "m"/"p" (mattino/pomeriggio) and the
// english names.
func ParseShift(s string) (Shift, error) {
	switch s {
	case "m", "morning":
		return Morning, nil
	case "p", "afternoon":
		return Afternoon, nil
	}
	return 0, fmt.Errorf("invalid shift %q (want m/morning or p/afternoon)", s)
}

// ShiftState is the last two observed availability counts for one shift of
// one day. Zero means "no room". Counts are never negative.
type ShiftState struct {
	Previous int
	Current  int
}

// Day is one bookable day as exposed by the site, identified by its label
// (the formatted date exactly as scraped).
type Day struct {
	Date     time.Time
	Label    string
	Weekday  string
	Position int

	shifts [2]ShiftState
}

// State returns the mutable counter pair for the given shift.
func (d *Day) State(s Shift) *ShiftState {
	return &d.shifts[s]
}

func (d *Day) String() string {
	m, a := d.shifts[Morning], d.shifts[Afternoon]
	return fmt.Sprintf("%s %s - morning: %d (prev %d), afternoon: %d (prev %d)",
		d.Weekday, d.Label, m.Current, m.Previous, a.Current, a.Previous)
}

// Catalog is an ordered sequence of Days. It is rebuilt wholesale on
// staleness; only the ShiftState counters inside its Days mutate between
// rebuilds.
type Catalog struct {
	days []*Day
}

func New(days []*Day) *Catalog { return &Catalog{days: days} }

func (c *Catalog) Days() []*Day { return c.days }

func (c *Catalog) Len() int { return len(c.days) }

func (c *Catalog) Empty() bool { return c == nil || len(c.days) == 0 }

// Find returns the Day with the given label. Labels are assumed unique
// within one build; the first match wins.
func (c *Catalog) Find(label string) (*Day, bool) {
	for _, d := range c.days {
		if d.Label == label {
			return d, true
		}
	}
	return nil, false
}

// Labels returns the day labels in catalog order.
func (c *Catalog) Labels() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.days))
	for i, d := range c.days {
		out[i] = d.Label
	}
	return out
}

// ParseLabel parses a day-button label, rejecting calendrically invalid
// dates (time.Parse refuses day-out-of-range values such as 31/02).
func ParseLabel(label string) (time.Time, error) {
	t, err := time.Parse(LabelLayout, label)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day label %q: %w", label, err)
	}
	return t, nil
}
