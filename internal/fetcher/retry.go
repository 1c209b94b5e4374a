package fetcher

import (
	"context"
	"time"
)

// BackoffPolicy computes inter-attempt delays for failed fetches. The delay
// before retrying after failed attempt i (zero-based) is Base * 2^i, with no
// jitter, so cumulative waits are deterministic and testable.
type BackoffPolicy struct {
	MaxAttempts int
	Base        time.Duration
}

// Delay returns the wait duration after the given zero-based failed attempt.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.Base << uint(attempt)
}

// sleep blocks cooperatively for d, returning early if the context finishes.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
