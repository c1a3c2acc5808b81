package graph

import (
	"context"
	"math/rand/v2"
	"time"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the production SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
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

// RetryPolicy decides whether and how long to wait before another attempt.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
	MaxJitter   time.Duration
	Retryable   func(error) bool
	// Jitter returns a value in [0, max). Nil uses math/rand/v2.
	Jitter func(max time.Duration) time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 6,
		Base:        500 * time.Millisecond,
		Cap:         30 * time.Second,
		MaxJitter:   250 * time.Millisecond,
		Retryable:   IsRetryable,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if p.Retryable == nil {
		return IsRetryable(err)
	}
	return p.Retryable(err)
}

// Delay is the wait before attempt+1 given that attempt (1-indexed) failed:
// max(retryAfter, min(Cap, Base*2^(attempt-1)) + jitter).
func (p RetryPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := p.Cap
	if shift := attempt - 1; shift < 32 {
		if d := p.Base << shift; d > 0 && d < p.Cap {
			backoff = d
		}
	}
	wait := backoff + p.jitter()
	if retryAfter > wait {
		return retryAfter
	}
	return wait
}

func (p RetryPolicy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(p.MaxJitter)
	}
	return rand.N(p.MaxJitter)
}
