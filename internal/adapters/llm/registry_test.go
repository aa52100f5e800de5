package llm

import (
	"context"
	"testing"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
	"github.com/diligent-ai/diligent/internal/testutil"
)

func TestRegistryGetCreatesAndCaches(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	r.Configure("claude", AdapterConfig{Name: "claude", Path: "claude"})

	first, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("Get should return the cached instance")
	}
	if first.Name() != "claude" {
		t.Errorf("Name = %q", first.Name())
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	_, err := r.Get("oracle")
	if err == nil {
		t.Fatal("expected error")
	}
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("category = %v, want not_found", core.GetCategory(err))
	}
}

func TestRegistryConfigureInvalidatesCache(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	r.Configure("codex", AdapterConfig{Name: "codex", Path: "codex"})

	first, err := r.Get("codex")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r.Configure("codex", AdapterConfig{Name: "codex", Path: "codex", Model: "o4"})
	second, err := r.Get("codex")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first == second {
		t.Error("Configure should drop the cached instance")
	}
}

func TestRegistryRegisterDirect(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	mock := testutil.NewMockBackend("custom")

	if err := r.Register("custom", mock); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("custom", mock); err == nil {
		t.Error("duplicate Register should fail")
	}

	got, err := r.Get("custom")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "custom" {
		t.Errorf("Name = %q", got.Name())
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	r.Configure("gemini", AdapterConfig{Name: "gemini"})
	r.Configure("claude", AdapterConfig{Name: "claude"})
	_ = r.Register("zeta", testutil.NewMockBackend("zeta"))

	names := r.List()
	want := []string{"claude", "gemini", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q (sorted)", i, names[i], want[i])
		}
	}
}

func TestRegistryAvailable(t *testing.T) {
	r := NewRegistry(logging.NewNop())
	_ = r.Register("up", testutil.NewMockBackend("up"))
	_ = r.Register("down", testutil.NewMockBackend("down").
		WithPingError(core.ErrBackend("down", "unreachable")))

	available := r.Available(context.Background())
	if len(available) != 1 || available[0] != "up" {
		t.Errorf("Available = %v, want [up]", available)
	}
}
