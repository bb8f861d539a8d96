// Package notify delivers outbound messages to subscribers. Delivery is
// best-effort: failures are logged by callers, never fatal to the tracker.
package notify

import "context"

// Notifier sends a message to a subscriber. For the Telegram
// implementation the subscriber is a chat id.
type Notifier interface {
	Send(ctx context.Context, subscriber, text string) error
}

// Discard is a Notifier that drops every message. Used when no messaging
// channel is configured.
type Discard struct{}

func (Discard) Send(context.Context, string, string) error { return nil }
