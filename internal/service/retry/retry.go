// Package retry provides a small bounded retry policy with exponential
// backoff.
package retry

import (
	"context"
	"time"
)

// Policy controls how an operation is retried. The delay before attempt n
// (1-based) is BaseDelay << (n-1); the first attempt runs immediately.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	IsRetryable func(error) bool
	OnRetry     func(attempt int, err error) // optional, called before each retry
}

// Do runs fn up to MaxAttempts times. It returns nil on the first success,
// the last error once attempts are exhausted, and immediately on a
// non-retryable error or cancelled context.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if p.OnRetry != nil {
				p.OnRetry(attempt, lastErr)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}
	}
	return lastErr
}
