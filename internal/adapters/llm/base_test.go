package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

func TestNewBaseAdapter(t *testing.T) {
	cfg := AdapterConfig{
		Name:  "test",
		Path:  "/usr/bin/test",
		Model: "test-model",
	}

	adapter := NewBaseAdapter(cfg, nil)
	if adapter == nil {
		t.Fatal("NewBaseAdapter() returned nil")
	}
	if adapter.config.Name != "test" {
		t.Errorf("config.Name = %s, want test", adapter.config.Name)
	}
	if adapter.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestCheckAvailability(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test"}, nil)
		err := adapter.CheckAvailability(context.Background())
		if err == nil {
			t.Fatal("expected error for empty path")
		}
		if !core.IsCategory(err, core.ErrCatValidation) {
			t.Errorf("category = %v, want validation", core.GetCategory(err))
		}
	})

	t.Run("binary not on PATH", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "definitely-not-a-real-binary-xyz"}, nil)
		err := adapter.CheckAvailability(context.Background())
		if err == nil {
			t.Fatal("expected error for missing binary")
		}
		if !core.IsCategory(err, core.ErrCatBackend) {
			t.Errorf("category = %v, want backend", core.GetCategory(err))
		}
		var derr *core.DomainError
		if !errors.As(err, &derr) || derr.Code != core.CodeBackendUnavailable {
			t.Errorf("code = %v, want %v", derr.Code, core.CodeBackendUnavailable)
		}
		if core.IsRetryable(err) {
			t.Error("missing binary should not be retryable")
		}
	})

	t.Run("existing binary", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "sh"}, nil)
		if err := adapter.CheckAvailability(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestExecuteCommand(t *testing.T) {
	t.Run("captures stdout", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "sh"}, nil)
		result, err := adapter.ExecuteCommand(context.Background(),
			[]string{"-c", "echo hello"}, "", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(result.Stdout) != "hello" {
			t.Errorf("Stdout = %q", result.Stdout)
		}
		if result.ExitCode != 0 {
			t.Errorf("ExitCode = %d", result.ExitCode)
		}
	})

	t.Run("passes stdin", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "sh"}, nil)
		result, err := adapter.ExecuteCommand(context.Background(),
			[]string{"-c", "cat"}, "piped input", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stdout != "piped input" {
			t.Errorf("Stdout = %q", result.Stdout)
		}
	})

	t.Run("timeout classified", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "sh"}, nil)
		_, err := adapter.ExecuteCommand(context.Background(),
			[]string{"-c", "sleep 5"}, "", 50*time.Millisecond)
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if !core.IsCategory(err, core.ErrCatTimeout) {
			t.Errorf("category = %v, want timeout", core.GetCategory(err))
		}
	})

	t.Run("nonzero exit classified", func(t *testing.T) {
		adapter := NewBaseAdapter(AdapterConfig{Name: "test", Path: "sh"}, nil)
		result, err := adapter.ExecuteCommand(context.Background(),
			[]string{"-c", "echo broken >&2; exit 3"}, "", time.Minute)
		if err == nil {
			t.Fatal("expected error")
		}
		if result.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", result.ExitCode)
		}
		var domErr *core.DomainError
		if !errors.As(err, &domErr) {
			t.Fatalf("expected DomainError, got %T", err)
		}
		if !strings.Contains(domErr.Message, "broken") {
			t.Errorf("error message %q does not carry stderr", domErr.Message)
		}
	})
}

func TestClassifyError(t *testing.T) {
	adapter := NewBaseAdapter(AdapterConfig{Name: "test"}, nil)

	tests := []struct {
		name      string
		stderr    string
		wantCode  string
		retryable bool
	}{
		{"rate limit", "Error: rate limit exceeded, try later", core.CodeRateLimit, true},
		{"http 429", "server returned 429", core.CodeRateLimit, true},
		{"auth", "invalid api key provided", core.CodeAuthFailed, false},
		{"network", "connection refused", core.CodeBackendFailed, true},
		{"generic", "something unexpected", core.CodeBackendFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adapter.classifyError(&CommandResult{Stderr: tt.stderr, ExitCode: 1})
			var domErr *core.DomainError
			if !errors.As(err, &domErr) {
				t.Fatalf("expected DomainError, got %T", err)
			}
			if domErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", domErr.Code, tt.wantCode)
			}
			if domErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", domErr.Retryable, tt.retryable)
			}
		})
	}
}
