package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

// RetryPolicy defines backoff behavior for backend invocations.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryPolicy performs a single attempt. Backend replies are
// expensive and slow; callers opt in to retries explicitly.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  1,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Execute runs fn with retries according to the policy. Only errors
// marked retryable are retried; validation and parse errors fail fast.
func (p RetryPolicy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts || !core.IsRetryable(lastErr) {
			return lastErr
		}

		wait := delay
		if p.Jitter && delay > 0 {
			// Full jitter: anywhere in (0, delay].
			wait = time.Duration(rand.Int63n(int64(delay)) + 1)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return lastErr
}
