package llm

import (
	"context"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

// pingTimeout bounds availability probes; version checks that take
// longer than this indicate a broken install.
const pingTimeout = 15 * time.Second

// CodexAdapter implements core.Backend for the Codex CLI.
type CodexAdapter struct {
	*BaseAdapter
}

// NewCodexAdapter creates a Codex adapter.
func NewCodexAdapter(cfg AdapterConfig, logger *logging.Logger) *CodexAdapter {
	if cfg.Path == "" {
		cfg.Path = "codex"
	}
	cfg.Name = "codex"
	return &CodexAdapter{
		BaseAdapter: NewBaseAdapter(cfg, logger.WithBackend("codex")),
	}
}

// Name returns the backend identifier.
func (c *CodexAdapter) Name() string { return "codex" }

// Ping checks if the Codex CLI is installed and responsive.
func (c *CodexAdapter) Ping(ctx context.Context) error {
	if err := c.CheckAvailability(ctx); err != nil {
		return err
	}
	_, err := c.ExecuteCommand(ctx, []string{"--version"}, "", pingTimeout)
	return err
}

// Generate runs a prompt through `codex exec` in headless mode.
func (c *CodexAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	args := []string{"exec", "--skip-git-repo-check",
		"-c", `approval_policy="never"`,
		"-c", `sandbox_mode="read-only"`,
	}

	model := opts.Model
	if model == "" {
		model = c.config.Model
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	result, err := c.ExecuteCommand(ctx, args, opts.Prompt, opts.Timeout)
	if err != nil {
		return nil, err
	}

	return &core.GenerateResult{
		Output:   result.Stdout,
		Model:    model,
		Duration: result.Duration,
	}, nil
}
