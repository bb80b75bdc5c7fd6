package notifier

import "context"

// Notifier sends outbound mail. Checkout treats it as fire-and-forget: a
// failed send is logged and never reverses a committed order.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}
