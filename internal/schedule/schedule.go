package schedule

import (
	"context"
	"time"
)

// Wait blocks until the given time arrives or ctx is canceled. A time
// already in the past returns immediately.
func Wait(ctx context.Context, until time.Time) error {
	delay := time.Until(until)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
