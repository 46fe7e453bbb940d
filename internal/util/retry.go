// ABOUTME: Retry utilities with exponential backoff for AI provider calls
// ABOUTME: Backoff is driven by the error taxonomy's recoverable flag by default
package util

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/mbrook/engram/internal/aierr"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	// Exponential: 2^attempt * base
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	// Cap at 30 seconds
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2.
	// Sub-4ns backoffs have no jitter range to draw from; rand.Int64N
	// panics on n <= 0, so return them unjittered.
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}

// RetryOptions configures WithRetry.
type RetryOptions struct {
	MaxAttempts       int           // total attempts including the first (default 3)
	Delay             time.Duration // delay before the first retry (default 1s)
	BackoffMultiplier float64       // growth factor per retry (default 2)
	MaxDelay          time.Duration // cap on the delay (0 = no cap)
	AddJitter         bool          // apply ±25% jitter to each delay

	// ShouldRetry decides whether a failure is retried. Defaults to the
	// taxonomy's recoverable flag, so invalid-input and initialization
	// errors abort immediately.
	ShouldRetry func(err error) bool

	// OnRetry is invoked after the backoff wait, just before each retry,
	// with the 1-based attempt number that just failed and its error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryOptions returns the standard retry policy for provider calls.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:       3,
		Delay:             time.Second,
		BackoffMultiplier: 2,
	}
}

func (o *RetryOptions) fillDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Delay <= 0 {
		o.Delay = time.Second
	}
	if o.BackoffMultiplier <= 0 {
		o.BackoffMultiplier = 2
	}
	if o.ShouldRetry == nil {
		o.ShouldRetry = aierr.IsRecoverable
	}
}

// WithRetry runs fn up to opts.MaxAttempts times with exponential backoff
// between failures. Non-retryable errors abort immediately without consuming
// further attempts. The backoff wait respects context cancellation. After the
// final attempt the last error is returned as-is.
func WithRetry[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts RetryOptions) (T, error) {
	var zero T
	opts.fillDefaults()

	delay := opts.Delay
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !opts.ShouldRetry(err) || attempt == opts.MaxAttempts {
			return zero, lastErr
		}

		wait := delay
		if opts.MaxDelay > 0 && wait > opts.MaxDelay {
			wait = opts.MaxDelay
		}
		if opts.AddJitter {
			wait = CalculateBackoff(wait/2, 1) // 2^1 * base restores wait, jittered
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}

		delay = time.Duration(float64(delay) * opts.BackoffMultiplier)
	}

	return zero, lastErr
}
