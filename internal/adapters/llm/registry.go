package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/diagnostics"
	"github.com/diligent-ai/diligent/internal/logging"
)

// BackendFactory creates a backend from configuration.
type BackendFactory func(ctx context.Context, cfg AdapterConfig, logger *logging.Logger) (core.Backend, error)

// Registry manages available backends. Backends are created lazily on
// first Get and cached.
type Registry struct {
	factories map[string]BackendFactory
	backends  map[string]core.Backend
	configs   map[string]AdapterConfig
	logger    *logging.Logger
	mu        sync.RWMutex
}

// NewRegistry creates a backend registry with the built-in factories.
func NewRegistry(logger *logging.Logger) *Registry {
	r := &Registry{
		factories: make(map[string]BackendFactory),
		backends:  make(map[string]core.Backend),
		configs:   make(map[string]AdapterConfig),
		logger:    logger,
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	// Subprocess adapters check host resources before each spawn.
	r.RegisterFactory("claude", func(_ context.Context, cfg AdapterConfig, logger *logging.Logger) (core.Backend, error) {
		a := NewClaudeAdapter(cfg, logger)
		a.WithPreflight(diagnostics.DefaultPreflight())
		return a, nil
	})
	r.RegisterFactory("codex", func(_ context.Context, cfg AdapterConfig, logger *logging.Logger) (core.Backend, error) {
		a := NewCodexAdapter(cfg, logger)
		a.WithPreflight(diagnostics.DefaultPreflight())
		return a, nil
	})
	r.RegisterFactory("gemini", func(ctx context.Context, cfg AdapterConfig, logger *logging.Logger) (core.Backend, error) {
		return NewGeminiAdapter(ctx, cfg, logger)
	})
}

// RegisterFactory registers a factory for a backend type.
func (r *Registry) RegisterFactory(name string, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Register adds a backend instance directly to the registry.
func (r *Registry) Register(name string, backend core.Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend already registered: %s", name)
	}
	r.backends[name] = backend
	return nil
}

// Configure sets configuration for a backend and drops any cached
// instance so the next Get rebuilds it.
func (r *Registry) Configure(name string, cfg AdapterConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	delete(r.backends, name)
}

// Get returns a backend by name, creating it if necessary.
func (r *Registry) Get(name string) (core.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if backend, ok := r.backends[name]; ok {
		return backend, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, core.ErrNotFound("backend", name)
	}

	cfg, ok := r.configs[name]
	if !ok {
		cfg = AdapterConfig{Name: name}
	}

	backend, err := factory(context.Background(), cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("creating backend %s: %w", name, err)
	}

	r.backends[name] = backend
	return backend, nil
}

// List returns names of all configured or instantiated backends, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range r.configs {
		seen[name] = struct{}{}
	}
	for name := range r.backends {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns backends that pass Ping, probed concurrently.
func (r *Registry) Available(ctx context.Context) []string {
	names := r.List()

	var mu sync.Mutex
	var available []string
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backend, err := r.Get(name)
			if err != nil {
				return
			}
			if err := backend.Ping(ctx); err != nil {
				r.logger.Debug("backend unavailable", "backend", name, "error", err)
				return
			}
			mu.Lock()
			available = append(available, name)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(available)
	return available
}

// Close releases backends that hold long-lived resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, backend := range r.backends {
		if closer, ok := backend.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing backend %s: %w", name, err)
			}
		}
	}
	return firstErr
}
