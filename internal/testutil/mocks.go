// Package testutil provides shared test doubles for backend and
// registry behavior.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

// MockBackend is a configurable core.Backend for tests. Configure it
// with the With* builders; calls are recorded for assertion.
type MockBackend struct {
	mu sync.Mutex

	name         string
	generateFunc func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error)
	pingErr      error

	calls []core.GenerateOptions
}

// NewMockBackend creates a mock that echoes a minimal valid reply.
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{name: name}
}

// WithResponse makes every Generate call return the given output.
func (m *MockBackend) WithResponse(output string) *MockBackend {
	m.generateFunc = func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
		return &core.GenerateResult{Output: output, Duration: time.Millisecond}, nil
	}
	return m
}

// WithError makes every Generate call fail.
func (m *MockBackend) WithError(err error) *MockBackend {
	m.generateFunc = func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
		return nil, err
	}
	return m
}

// WithGenerateFunc installs a custom Generate implementation.
func (m *MockBackend) WithGenerateFunc(fn func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error)) *MockBackend {
	m.generateFunc = fn
	return m
}

// WithResponses returns each output in order, then repeats the last.
func (m *MockBackend) WithResponses(outputs ...string) *MockBackend {
	i := 0
	m.generateFunc = func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
		out := outputs[i]
		if i < len(outputs)-1 {
			i++
		}
		return &core.GenerateResult{Output: out, Duration: time.Millisecond}, nil
	}
	return m
}

// WithPingError makes Ping fail.
func (m *MockBackend) WithPingError(err error) *MockBackend {
	m.pingErr = err
	return m
}

// Name implements core.Backend.
func (m *MockBackend) Name() string { return m.name }

// Ping implements core.Backend.
func (m *MockBackend) Ping(ctx context.Context) error { return m.pingErr }

// Generate implements core.Backend.
func (m *MockBackend) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	fn := m.generateFunc
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, opts)
	}
	return &core.GenerateResult{Output: `{"risk_score": 50, "findings": [], "executive_summary": ""}`}, nil
}

// Calls returns a copy of the recorded Generate options.
func (m *MockBackend) Calls() []core.GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.GenerateOptions, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Generate was invoked.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockRegistry is an in-memory core.BackendRegistry for tests.
type MockRegistry struct {
	mu       sync.RWMutex
	backends map[string]core.Backend
}

// NewMockRegistry creates a registry preloaded with the given backends.
func NewMockRegistry(backends ...core.Backend) *MockRegistry {
	r := &MockRegistry{backends: make(map[string]core.Backend)}
	for _, b := range backends {
		r.backends[b.Name()] = b
	}
	return r
}

// Register implements core.BackendRegistry.
func (r *MockRegistry) Register(name string, backend core.Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend already registered: %s", name)
	}
	r.backends[name] = backend
	return nil
}

// Get implements core.BackendRegistry.
func (r *MockRegistry) Get(name string) (core.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, core.ErrNotFound("backend", name)
	}
	return b, nil
}

// List implements core.BackendRegistry.
func (r *MockRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// Available implements core.BackendRegistry.
func (r *MockRegistry) Available(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, b := range r.backends {
		if b.Ping(ctx) == nil {
			names = append(names, name)
		}
	}
	return names
}
