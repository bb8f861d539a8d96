package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gaiola-watcher/internal/catalog"
)

// Outcome is the classification of one probe.
type Outcome int

const (
	NoChange Outcome = iota
	Opening
)

func (o Outcome) String() string {
	if o == Opening {
		return "opening"
	}
	return "no-change"
}

// Result carries the readings of one completed probe. Baseline is the
// shift's previous count before the probe updated it.
type Result struct {
	Outcome  Outcome
	Baseline int
	Current  int
	Unwanted int
}

// prober is the slice of the site adapter the engine drives.
type prober interface {
	SelectDay(ctx context.Context, label string) error
	SelectShift(ctx context.Context, shift catalog.Shift) error
	ReadAvailabilityCount(ctx context.Context) (int, error)
}

// Engine executes the two-read probe for one (day, shift) pair and
// classifies the outcome.
//
// The page recomputes a single shared availability readout per selection,
// so a naive single read of the requested shift cannot be told apart from
// a stale readout left over from the previous selection. Reading the
// other shift first and comparing its value against the requested shift's
// detects the stuck case: identical reads mean the second one is
// untrustworthy and must classify as no-change.
type Engine struct {
	adapter prober
	settle  time.Duration
}

func NewEngine(adapter prober, settle time.Duration) *Engine {
	return &Engine{adapter: adapter, settle: settle}
}

// Probe selects the day, reads the unwanted shift's count, then the
// requested shift's count, and classifies:
//
//	previous == 0 && current > 0 && current != unwanted  => Opening
//	anything else                                        => NoChange
//
// After classification the shift's baseline is unconditionally set to the
// count just read, so the next poll compares against the latest true
// reading. On any adapter error the state is left untouched and the error
// is returned; the caller forces a catalog rebuild and retries next cycle
// with the old baseline intact.
func (e *Engine) Probe(ctx context.Context, day *catalog.Day, shift catalog.Shift) (Result, error) {
	if err := e.adapter.SelectDay(ctx, day.Label); err != nil {
		return Result{}, fmt.Errorf("select day %s: %w", day.Label, err)
	}
	if err := e.settleWait(ctx); err != nil {
		return Result{}, err
	}

	if err := e.adapter.SelectShift(ctx, shift.Other()); err != nil {
		return Result{}, fmt.Errorf("select %s shift: %w", shift.Other(), err)
	}
	if err := e.settleWait(ctx); err != nil {
		return Result{}, err
	}
	unwanted, err := e.adapter.ReadAvailabilityCount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read %s availability: %w", shift.Other(), err)
	}

	if err := e.adapter.SelectShift(ctx, shift); err != nil {
		return Result{}, fmt.Errorf("select %s shift: %w", shift, err)
	}
	if err := e.settleWait(ctx); err != nil {
		return Result{}, err
	}
	current, err := e.adapter.ReadAvailabilityCount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read %s availability: %w", shift, err)
	}

	st := day.State(shift)
	res := Result{
		Outcome:  Classify(st.Previous, current, unwanted),
		Baseline: st.Previous,
		Current:  current,
		Unwanted: unwanted,
	}
	st.Current = current
	st.Previous = current
	return res, nil
}

// Classify applies the opening rule to one triple of readings. The
// current == unwanted case signals a stuck readout and is no-change even
// when the transition otherwise looks genuine.
func Classify(previous, current, unwanted int) Outcome {
	if previous == 0 && current > 0 && current != unwanted {
		return Opening
	}
	return NoChange
}

// settleWait bounds the race between a selection click and the page's own
// asynchronous readout update. Reading immediately after a click returns
// the previous selection's value.
func (e *Engine) settleWait(ctx context.Context) error {
	if e.settle <= 0 {
		return nil
	}
	t := time.NewTimer(e.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
