// Package retry runs operations with exponential backoff and jitter.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 250 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first (default: 3).
	MaxAttempts int

	// BaseDelay is doubled on each retry (default: 250ms).
	BaseDelay time.Duration

	// MaxDelay caps a single wait (default: 30s).
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// Backoff returns exponential backoff with jitter for the given retry number.
// The delay doubles each attempt, is capped at maxDelay, and varies by ±25%.
func Backoff(baseDelay, maxDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in the shift.
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt-1))
	if backoff <= 0 || backoff > maxDelay {
		backoff = maxDelay
	}
	if quarter := backoff / 4; quarter > 0 {
		backoff += time.Duration(rand.Int64N(int64(quarter)*2+1)) - quarter
	}
	return backoff
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done. It returns the number of attempts made and the
// last error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) (int, error) {
	p = p.withDefaults()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return attempt, nil
		}
		if attempt == p.MaxAttempts || (p.Retryable != nil && !p.Retryable(err)) {
			return attempt, err
		}

		timer := time.NewTimer(Backoff(p.BaseDelay, p.MaxDelay, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, err
		case <-timer.C:
		}
	}
	return p.MaxAttempts, err
}
