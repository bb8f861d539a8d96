package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gaiola-watcher/internal/catalog"
)

func TestClassifyRule(t *testing.T) {
	// opening iff previous == 0 && current > 0 && current != unwanted,
	// enumerated over the full {0,1,2}^3 grid.
	for prev := 0; prev <= 2; prev++ {
		for cur := 0; cur <= 2; cur++ {
			for unw := 0; unw <= 2; unw++ {
				want := NoChange
				if prev == 0 && cur > 0 && cur != unw {
					want = Opening
				}
				got := Classify(prev, cur, unw)
				assert.Equal(t, want, got, "prev=%d cur=%d unwanted=%d", prev, cur, unw)
			}
		}
	}
}

func TestProbeReadsUnwantedShiftFirst(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.set("01/06/2026", catalog.Morning, 2)
	f.set("01/06/2026", catalog.Afternoon, 5)
	e := NewEngine(f, 0)
	day := &catalog.Day{Label: "01/06/2026"}

	res, err := e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)

	// requested morning: current comes from the morning readout, unwanted
	// from the afternoon one read just before it.
	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 5, res.Unwanted)
	assert.Equal(t, catalog.Morning, f.selShift, "requested shift must be selected last")
}

func TestProbeGenuineOpening(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.set("01/06/2026", catalog.Morning, 3)
	f.set("01/06/2026", catalog.Afternoon, 0)
	e := NewEngine(f, 0)
	day := &catalog.Day{Label: "01/06/2026"}

	res, err := e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)

	assert.Equal(t, Opening, res.Outcome)
	assert.Equal(t, 0, res.Baseline)
	assert.Equal(t, 3, res.Current)
}

func TestProbeBaselineUpdateIsUnconditional(t *testing.T) {
	tests := []struct {
		name             string
		prev             int
		current, unwanted int
		want             Outcome
	}{
		{"opening", 0, 3, 0, Opening},
		{"no room", 0, 0, 2, NoChange},
		{"already had room", 2, 3, 0, NoChange},
		{"stuck readout", 0, 3, 3, NoChange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeAdapter("01/06/2026")
			f.set("01/06/2026", catalog.Morning, tc.current)
			f.set("01/06/2026", catalog.Afternoon, tc.unwanted)
			e := NewEngine(f, 0)
			day := &catalog.Day{Label: "01/06/2026"}
			day.State(catalog.Morning).Previous = tc.prev

			res, err := e.Probe(context.Background(), day, catalog.Morning)
			require.NoError(t, err)

			assert.Equal(t, tc.want, res.Outcome)
			// after any completed probe the baseline equals the count just
			// read, regardless of classification
			assert.Equal(t, tc.current, day.State(catalog.Morning).Previous)
			assert.Equal(t, tc.current, day.State(catalog.Morning).Current)
		})
	}
}

// Two consecutive polls against a stuck readout: the first poll reads
// current == unwanted == 3 and classifies no-change, but still overwrites
// the baseline with 3. The second poll then sees previous=3 and suppresses
// what may have been a real opening. This mirrors the inherited behavior;
// see DESIGN.md for the open-question decision.
func TestProbeStuckReadoutSuppressesNextOpening(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.set("01/06/2026", catalog.Morning, 3)
	f.set("01/06/2026", catalog.Afternoon, 3)
	e := NewEngine(f, 0)
	day := &catalog.Day{Label: "01/06/2026"}

	res, err := e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)
	assert.Equal(t, NoChange, res.Outcome)
	assert.Equal(t, 3, day.State(catalog.Morning).Previous)

	f.set("01/06/2026", catalog.Morning, 5)
	res, err = e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)
	assert.Equal(t, NoChange, res.Outcome, "baseline is nonzero, opening suppressed")
}

// A second probe after a detected opening must not classify as an opening
// again, even with the count unchanged: at most one booking per opening.
func TestProbeOpeningDoesNotRetrigger(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.set("01/06/2026", catalog.Morning, 2)
	f.set("01/06/2026", catalog.Afternoon, 0)
	e := NewEngine(f, 0)
	day := &catalog.Day{Label: "01/06/2026"}

	res, err := e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)
	require.Equal(t, Opening, res.Outcome)

	res, err = e.Probe(context.Background(), day, catalog.Morning)
	require.NoError(t, err)
	assert.Equal(t, NoChange, res.Outcome)
}

func TestProbeErrorLeavesBaselineIntact(t *testing.T) {
	boom := errors.New("element not found")
	steps := []func(f *fakeAdapter){
		func(f *fakeAdapter) { f.dayErr = boom },
		func(f *fakeAdapter) { f.shiftErr = boom },
		func(f *fakeAdapter) { f.readErr = boom },
	}
	for i, inject := range steps {
		t.Run(fmt.Sprintf("step_%d", i), func(t *testing.T) {
			f := newFakeAdapter("01/06/2026")
			f.set("01/06/2026", catalog.Morning, 4)
			inject(f)
			e := NewEngine(f, 0)
			day := &catalog.Day{Label: "01/06/2026"}
			day.State(catalog.Morning).Previous = 0

			_, err := e.Probe(context.Background(), day, catalog.Morning)
			require.ErrorIs(t, err, boom)
			assert.Equal(t, 0, day.State(catalog.Morning).Previous,
				"failed probe must not advance the baseline")
		})
	}
}

func TestProbeCancelledContext(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	e := NewEngine(f, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Probe(ctx, &catalog.Day{Label: "01/06/2026"}, catalog.Morning)
	assert.ErrorIs(t, err, context.Canceled)
}
