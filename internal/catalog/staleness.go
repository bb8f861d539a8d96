package catalog

import (
	"strings"
	"time"
)

// StalenessPolicy decides when the Catalog must be rebuilt, independent of
// the polling interval. The page mutates server-side nightly and sometimes
// needs a hard reload to reflect new inventory; distinguishing "new day"
// from "mid-day refresh" avoids reloads that would reset in-memory counters
// and could mask an opening that occurred between polls.
type StalenessPolicy struct {
	// expectedLocation is a substring the adapter's current location must
	// contain while on the booking page.
	expectedLocation string

	lastRebuildDay time.Time // midnight-truncated, zero before first rebuild
	forced         bool
}

func NewStalenessPolicy(expectedLocation string) *StalenessPolicy {
	return &StalenessPolicy{expectedLocation: expectedLocation}
}

// Force requests a rebuild on the next check. Used after a probe error or a
// completed booking, both of which leave the page state untrusted.
func (p *StalenessPolicy) Force() { p.forced = true }

// OnPage reports whether the given location is the expected booking page.
func (p *StalenessPolicy) OnPage(location string) bool {
	return strings.Contains(location, p.expectedLocation)
}

// Stale reports whether the catalog must be rebuilt: the wall-clock
// calendar day advanced since the last rebuild, the adapter is no longer on
// the expected booking page, the catalog is empty, or a rebuild was forced.
func (p *StalenessPolicy) Stale(now time.Time, location string, c *Catalog) bool {
	if p.forced || c.Empty() {
		return true
	}
	if !p.OnPage(location) {
		return true
	}
	return !sameDay(p.lastRebuildDay, now)
}

// MarkRebuilt records the calendar day of a completed rebuild and clears
// any forced flag.
func (p *StalenessPolicy) MarkRebuilt(now time.Time) {
	p.lastRebuildDay = truncateDay(now)
	p.forced = false
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
