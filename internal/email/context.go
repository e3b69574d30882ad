package email

import (
	"context"
	"time"
)

func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Detach cancellation so a job shutting down does not cut a send in half.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
