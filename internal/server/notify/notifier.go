// Package notify delivers participant-facing messages. Delivery is
// fire-and-forget: a failed send is logged by the caller, never retried.
package notify

import "context"

type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
