package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gaiola-watcher/internal/catalog"
)

func newTestMonitor(f *fakeAdapter) (*Monitor, *memStore, *memNotifier) {
	store := &memStore{}
	notifier := &memNotifier{}
	m := New(f, NewRegistry(), store, notifier, Options{
		Interval:         time.Hour,
		ExpectedLocation: "booking",
	})
	return m, store, notifier
}

func TestTickRebuildsAndPublishesDates(t *testing.T) {
	f := newFakeAdapter("01/06/2026", "02/06/2026")
	m, _, _ := newTestMonitor(f)

	m.tick(context.Background())

	assert.Equal(t, []string{"01/06/2026", "02/06/2026"}, m.Dates())
}

func TestTickBooksOnOpening(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.submitCode = "GAI007"
	m, store, notifier := newTestMonitor(f)

	task := testTask("chat-1", "01/06/2026")
	require.NoError(t, m.Registry().Register(task))

	// first cycle: counts are zero everywhere, baseline stays zero
	m.tick(context.Background())
	assert.Zero(t, f.submits)

	// a spot frees up in the morning shift only
	f.set("01/06/2026", catalog.Morning, 2)
	m.tick(context.Background())

	assert.Equal(t, 1, f.submits)
	assert.False(t, m.Registry().IsActive(task.ID))
	assert.Equal(t, StatusCompleted, m.Registry().List()[0].Status)

	code, err := store.FindByName(context.Background(), "Mario Rossi")
	require.NoError(t, err)
	assert.Equal(t, "GAI007", code)

	msgs := notifier.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "Spot freed")
	assert.Contains(t, msgs[1], "GAI007")

	// retired task: later cycles must not book again
	m.tick(context.Background())
	assert.Equal(t, 1, f.submits)
}

func TestTickStuckReadoutDoesNotBook(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	m, _, notifier := newTestMonitor(f)
	require.NoError(t, m.Registry().Register(testTask("chat-1", "01/06/2026")))

	m.tick(context.Background())

	// both shifts read the same nonzero value: untrustworthy readout
	f.set("01/06/2026", catalog.Morning, 3)
	f.set("01/06/2026", catalog.Afternoon, 3)
	m.tick(context.Background())

	assert.Zero(t, f.submits)
	assert.Empty(t, notifier.messages())
}

func TestTickBookingFailureKeepsTaskActive(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.submitErr = errors.New("ConfermaPrenotazione not found")
	m, store, notifier := newTestMonitor(f)

	task := testTask("chat-1", "01/06/2026")
	require.NoError(t, m.Registry().Register(task))

	m.tick(context.Background())
	f.set("01/06/2026", catalog.Morning, 2)
	m.tick(context.Background())

	assert.Equal(t, 1, f.submits)
	assert.True(t, m.Registry().IsActive(task.ID), "failed booking must not retire the task")
	assert.GreaterOrEqual(t, f.reloads, 1, "baseline page must be restored")

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	msgs := notifier.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "Booking failed")

	// no automatic retry within the same opening: the baseline advanced to
	// the read count, so the next cycle with the same count is no-change
	m.tick(context.Background())
	assert.Equal(t, 1, f.submits)
}

func TestTickCancelledTaskIsNotProbed(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	f.set("01/06/2026", catalog.Morning, 2)
	m, _, _ := newTestMonitor(f)

	task := testTask("chat-1", "01/06/2026")
	require.NoError(t, m.Registry().Register(task))
	m.Registry().Cancel("chat-1")

	m.tick(context.Background())

	assert.Zero(t, f.submits)
	assert.Empty(t, f.selDay, "cancelled task must not drive the adapter")
}

func TestTickProbeErrorForcesRebuild(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	m, _, _ := newTestMonitor(f)
	require.NoError(t, m.Registry().Register(testTask("chat-1", "01/06/2026")))

	m.tick(context.Background())

	f.readErr = errors.New("timeout")
	m.tick(context.Background())

	// next cycle rebuilds even though neither the day nor the location
	// changed
	f.readErr = nil
	f.labels = []string{"01/06/2026", "02/06/2026"}
	m.tick(context.Background())
	assert.Equal(t, []string{"01/06/2026", "02/06/2026"}, m.Dates())
}

func TestTickEmptyCatalogRetriesNextCycle(t *testing.T) {
	f := newFakeAdapter() // zero day controls
	m, _, _ := newTestMonitor(f)

	m.tick(context.Background())
	assert.Empty(t, m.Dates())

	f.labels = []string{"01/06/2026"}
	m.tick(context.Background())
	assert.Equal(t, []string{"01/06/2026"}, m.Dates())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFakeAdapter("01/06/2026")
	m, _, _ := newTestMonitor(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
