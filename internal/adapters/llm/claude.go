package llm

import (
	"context"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

// ClaudeAdapter implements core.Backend for the Claude CLI.
type ClaudeAdapter struct {
	*BaseAdapter
}

// NewClaudeAdapter creates a Claude adapter.
func NewClaudeAdapter(cfg AdapterConfig, logger *logging.Logger) *ClaudeAdapter {
	if cfg.Path == "" {
		cfg.Path = "claude"
	}
	cfg.Name = "claude"
	return &ClaudeAdapter{
		BaseAdapter: NewBaseAdapter(cfg, logger.WithBackend("claude")),
	}
}

// Name returns the backend identifier.
func (c *ClaudeAdapter) Name() string { return "claude" }

// Ping checks if the Claude CLI is installed and responsive.
func (c *ClaudeAdapter) Ping(ctx context.Context) error {
	if err := c.CheckAvailability(ctx); err != nil {
		return err
	}
	_, err := c.ExecuteCommand(ctx, []string{"--version"}, "", pingTimeout)
	return err
}

// Generate runs a prompt through the Claude CLI in print mode.
func (c *ClaudeAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	args := []string{"--print"}

	model := opts.Model
	if model == "" {
		model = c.config.Model
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if opts.SystemPrompt != "" {
		args = append(args, "--system-prompt", opts.SystemPrompt)
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
