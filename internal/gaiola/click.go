package gaiola

import (
	"context"
	"fmt"
	"log/slog"
)

// ClickStrategy selects how an element is activated.
type ClickStrategy int

const (
	// ClickNative uses the driver's element click command.
	ClickNative ClickStrategy = iota
	// ClickScripted dispatches the click from injected script, which works
	// around elements the driver considers not interactable.
	ClickScripted
)

func (s ClickStrategy) String() string {
	if s == ClickScripted {
		return "scripted"
	}
	return "native"
}

// maxClickAttempts bounds the native-then-scripted fallback. The site's
// buttons intermittently reject native clicks while an overlay animates.
const maxClickAttempts = 3

// click scrolls the element into view and activates it, trying the native
// strategy first and falling back to a scripted click for the remaining
// attempts.
func (a *Adapter) click(ctx context.Context, el Element) error {
	var lastErr error
	for attempt := 0; attempt < maxClickAttempts; attempt++ {
		strategy := ClickNative
		if attempt > 0 {
			strategy = ClickScripted
		}

		if err := a.client.Exec(ctx, "arguments[0].scrollIntoView(true);", el); err != nil {
			lastErr = err
			continue
		}

		switch strategy {
		case ClickNative:
			lastErr = a.client.Click(ctx, el)
		case ClickScripted:
			lastErr = a.client.Exec(ctx, "arguments[0].click();", el)
		}
		if lastErr == nil {
			return nil
		}
		slog.Debug("click attempt failed", "strategy", strategy.String(), "attempt", attempt+1, "err", lastErr)
	}
	return fmt.Errorf("click failed after %d attempts: %w", maxClickAttempts, lastErr)
}
