package core

import (
	"context"
	"time"
)

// Backend defines the contract for one reasoning backend adapter.
// Implementations wrap a remote text-generation service (API or CLI);
// every failure mode crosses this boundary as an error value, never a panic.
type Backend interface {
	// Name returns the backend identifier (e.g., "claude", "gemini").
	Name() string

	// Ping checks if the backend is reachable and authenticated.
	Ping(ctx context.Context) error

	// Generate runs an instruction through the backend and returns the
	// raw free-form text. No retries are performed here; retry policy
	// belongs to the dispatcher.
	Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures a single backend invocation.
type GenerateOptions struct {
	Prompt       string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// DefaultGenerateOptions returns sensible defaults.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.3,
		Timeout:     2 * time.Minute,
	}
}

// GenerateResult contains the output of a backend invocation.
type GenerateResult struct {
	Output    string
	TokensIn  int
	TokensOut int
	Model     string
	Duration  time.Duration
}

// BackendDescriptor identifies one configured backend and the analyst
// role it plays. Descriptors are built once from configuration and are
// immutable for the process lifetime.
type BackendDescriptor struct {
	// Name is the registry key of the backend to invoke.
	Name string
	// Role is the specialization used to build the instruction,
	// e.g. "legal", "financial", "research".
	Role string
	// Model optionally overrides the backend's configured model.
	Model string
	// Timeout bounds this backend's invocation for a request.
	Timeout time.Duration
}

// BackendRegistry manages configured backends. It is constructed once at
// process start and passed explicitly into the dispatcher and the debate
// orchestrator; there are no ambient singletons.
type BackendRegistry interface {
	// Register adds a backend to the registry.
	Register(name string, backend Backend) error

	// Get retrieves a backend by name.
	Get(name string) (Backend, error)

	// List returns all registered backend names.
	List() []string

	// Available returns backends that pass Ping.
	Available(ctx context.Context) []string
}
