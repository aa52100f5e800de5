package service

import (
	"context"
	"testing"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

func TestRetryPolicySingleAttemptByDefault(t *testing.T) {
	calls := 0
	err := DefaultRetryPolicy().Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return core.ErrBackend("claude", "flaky")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1; retries are opt-in", calls)
	}
}

func TestRetryPolicyRetriesRetryable(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return core.ErrBackend("claude", "flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyJitterWithZeroDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 2, Jitter: true, Multiplier: 2}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return core.ErrBackend("claude", "flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryPolicyFailsFastOnNonRetryable(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return core.ErrMalformedOutput("claude", "garbage")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1; parse errors do not improve with retries", calls)
	}
}

func TestRetryPolicyHonorsContext(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Execute(ctx, func(ctx context.Context) error {
		return core.ErrBackend("claude", "flaky")
	})
	if err != context.DeadlineExceeded {
		t.Errorf("err = %v, want context deadline", err)
	}
}
