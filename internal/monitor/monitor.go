package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/catalog"
	"github.com/example/gaiola-watcher/internal/notify"
	"github.com/example/gaiola-watcher/internal/site"
)

// Options tunes the polling loop.
type Options struct {
	// Interval between polling cycles.
	Interval time.Duration
	// Settle is the wait between a selection click and the availability
	// read, bounding the page's asynchronous readout update.
	Settle time.Duration
	// ExpectedLocation is the substring the adapter's location must
	// contain while on the booking page.
	ExpectedLocation string
}

// Monitor is the single cooperative polling loop. All adapter interactions
// (catalog build, probe, booking) are serialized here because the shared
// browser session is not safely shareable across concurrent operations.
// Tasks are multiplexed onto the same cycle; within a task, probes run in
// catalog order and a two-read probe completes or fails atomically with
// respect to other probes.
type Monitor struct {
	adapter  site.Adapter
	registry *Registry
	notifier notify.Notifier

	engine    *Engine
	executor  *Executor
	staleness *catalog.StalenessPolicy
	interval  time.Duration

	catalog *catalog.Catalog

	// labels is the latest catalog snapshot, published for the control
	// surface which reads it from other goroutines.
	mu     sync.Mutex
	labels []string
}

func New(adapter site.Adapter, registry *Registry, store bookings.Store, notifier notify.Notifier, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 20 * time.Second
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Monitor{
		adapter:   adapter,
		registry:  registry,
		notifier:  notifier,
		engine:    NewEngine(adapter, opts.Settle),
		executor:  NewExecutor(adapter, store),
		staleness: catalog.NewStalenessPolicy(opts.ExpectedLocation),
		interval:  opts.Interval,
	}
}

// Registry returns the task registry the monitor schedules.
func (m *Monitor) Registry() *Registry { return m.registry }

// Dates returns the day labels of the last built catalog.
func (m *Monitor) Dates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Run drives polling cycles until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	// kick immediately
	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	now := time.Now()

	location, err := m.adapter.CurrentLocation(ctx)
	if err != nil {
		slog.Warn("monitor: current location unavailable", "err", err)
		m.staleness.Force()
		return
	}

	if m.staleness.Stale(now, location, m.catalog) {
		if err := m.rebuild(ctx, now, location); err != nil {
			slog.Warn("monitor: catalog rebuild failed", "err", err)
			m.staleness.Force()
			return
		}
	}

	for _, task := range m.registry.Active() {
		m.pollTask(ctx, task)
	}
}

// rebuild re-navigates if the adapter drifted off the booking page,
// rebuilds the catalog wholesale, and resets the recorded calendar day.
func (m *Monitor) rebuild(ctx context.Context, now time.Time, location string) error {
	if !m.staleness.OnPage(location) {
		slog.Info("monitor: off booking page, re-navigating", "location", location)
		if err := m.adapter.Reload(ctx); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
	}

	c, err := catalog.Build(ctx, m.adapter)
	if err != nil {
		return err
	}
	m.catalog = c
	m.staleness.MarkRebuilt(now)

	m.mu.Lock()
	m.labels = c.Labels()
	m.mu.Unlock()

	slog.Info("monitor: catalog rebuilt", "days", c.Len())
	return nil
}

func (m *Monitor) pollTask(ctx context.Context, task *Task) {
	for _, day := range m.catalog.Days() {
		if !task.WantsDate(day.Label) {
			continue
		}
		for _, shift := range task.Shifts {
			// cancellation takes effect at the next probe boundary
			if !m.registry.IsActive(task.ID) {
				return
			}

			res, err := m.engine.Probe(ctx, day, shift)
			if err != nil {
				slog.Warn("monitor: probe failed, forcing rebuild",
					"task", task.ID, "day", day.Label, "shift", shift.String(), "err", err)
				m.staleness.Force()
				return
			}

			slog.Debug("monitor: probe",
				"day", day.Label, "shift", shift.String(), "outcome", res.Outcome.String(),
				"baseline", res.Baseline, "current", res.Current, "unwanted", res.Unwanted)

			if res.Outcome != Opening {
				continue
			}

			slog.Info("monitor: opening detected",
				"task", task.ID, "day", day.Label, "shift", shift.String(), "count", res.Current)
			m.send(ctx, task.Subscriber,
				fmt.Sprintf("Spot freed %s %s (%s), booking now", day.Weekday, day.Label, shift))

			code, err := m.executor.Book(ctx, task)
			if err != nil {
				// One attempt per opening: restore the baseline page so the
				// failed form does not corrupt subsequent probes, but keep
				// the catalog and its advanced baselines. A rebuild here
				// would zero the counters and re-detect the opening that
				// was just consumed.
				slog.Error("monitor: booking failed", "task", task.ID, "day", day.Label, "err", err)
				m.send(ctx, task.Subscriber,
					fmt.Sprintf("Booking failed for %s on %s: %v", task.Subject.FullName(), day.Label, err))
				if rerr := m.adapter.Reload(ctx); rerr != nil {
					slog.Warn("monitor: baseline reload failed", "err", rerr)
					m.staleness.Force()
				}
				return
			}

			m.registry.Complete(task.ID)
			slog.Info("monitor: booked", "task", task.ID, "day", day.Label, "code", code)
			m.send(ctx, task.Subscriber,
				fmt.Sprintf("Booked for %s on %s %s (%s). Code: %s",
					task.Subject.FullName(), day.Weekday, day.Label, shift, code))

			// The confirmation flow left the page state behind; rebuild
			// before the next cycle probes again.
			m.staleness.Force()
			return
		}
	}
}

// send is fire-and-forget; notifier failures never affect the tracker.
func (m *Monitor) send(ctx context.Context, subscriber, text string) {
	if err := m.notifier.Send(ctx, subscriber, text); err != nil {
		slog.Warn("monitor: notify failed", "subscriber", subscriber, "err", err)
	}
}
