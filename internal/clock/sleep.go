// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffLinear sleeps attempt*base before the given retry attempt. Attempt 0
// returns immediately.
func BackoffLinear(ctx context.Context, attempt int, base time.Duration) error {
	if attempt <= 0 {
		return nil
	}
	return SleepWithContext(ctx, time.Duration(attempt)*base)
}
