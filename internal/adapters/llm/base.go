// Package llm contains the backend adapters: subprocess wrappers around
// the claude and codex CLIs and an API client for Gemini.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/diagnostics"
	"github.com/diligent-ai/diligent/internal/logging"
)

// AdapterConfig holds common adapter configuration.
type AdapterConfig struct {
	Name        string
	Path        string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// CommandResult holds the output of a subprocess invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// BaseAdapter provides common subprocess execution for CLI-backed
// backends.
type BaseAdapter struct {
	config    AdapterConfig
	logger    *logging.Logger
	preflight *diagnostics.Preflight
}

// NewBaseAdapter creates a base adapter. A nil logger is replaced with
// a no-op one.
func NewBaseAdapter(cfg AdapterConfig, logger *logging.Logger) *BaseAdapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BaseAdapter{config: cfg, logger: logger}
}

// WithPreflight enables resource checks before each subprocess spawn.
func (b *BaseAdapter) WithPreflight(p *diagnostics.Preflight) {
	b.preflight = p
}

// CheckAvailability verifies the configured binary is on PATH.
func (b *BaseAdapter) CheckAvailability(_ context.Context) error {
	cmdPath := b.config.Path
	if cmdPath == "" {
		return core.ErrValidation("NO_PATH", "adapter path not configured")
	}

	// Handle multi-word commands (e.g. "npx claude")
	cmdParts := strings.Fields(cmdPath)
	if _, err := exec.LookPath(cmdParts[0]); err != nil {
		return core.ErrUnavailable(b.config.Name, cmdParts[0]+" not found on PATH").WithCause(err)
	}
	return nil
}

// ExecuteCommand runs the configured binary with the given args and
// stdin under a timeout, capturing stdout and stderr.
func (b *BaseAdapter) ExecuteCommand(ctx context.Context, args []string, stdin string, optTimeout time.Duration) (*CommandResult, error) {
	timeout := optTimeout
	if timeout == 0 {
		timeout = b.config.Timeout
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if b.preflight != nil {
		check := b.preflight.Run()
		if !check.OK {
			return nil, core.ErrState("PREFLIGHT_FAILED",
				fmt.Sprintf("preflight check failed: %v", check.Errors))
		}
		for _, w := range check.Warnings {
			b.logger.Warn("preflight warning before command execution",
				"warning", w,
				"adapter", b.config.Name)
		}
	}

	cmdPath := b.config.Path
	if cmdPath == "" {
		return nil, core.ErrValidation("NO_PATH", "adapter path not configured")
	}
	cmdParts := strings.Fields(cmdPath)
	if len(cmdParts) > 1 {
		cmdPath = cmdParts[0]
		args = append(cmdParts[1:], args...)
	}

	// #nosec G204 -- command path and args come from validated config
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Env = append(os.Environ(),
		"DILIGENT_MANAGED=true",
		fmt.Sprintf("DILIGENT_BACKEND=%s", b.config.Name))

	b.logger.Debug("cli: executing command",
		"adapter", b.config.Name,
		"path", cmdPath,
		"args", args,
		"stdin_length", len(stdin),
		"timeout", timeout)

	startTime := time.Now()
	err := cmd.Run()
	duration := time.Since(startTime)

	result := &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if ctx.Err() == context.DeadlineExceeded {
		b.logger.Error("cli: command timeout",
			"adapter", b.config.Name,
			"duration", duration,
			"timeout", timeout,
			"stderr_preview", truncateForLog(result.Stderr, 1000))
		return result, core.ErrTimeout(fmt.Sprintf("command timed out after %v", timeout))
	}
	if ctx.Err() == context.Canceled {
		b.logger.Info("cli: command cancelled",
			"adapter", b.config.Name,
			"duration", duration)
		return result, core.ErrState("CANCELLED", "operation cancelled")
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			b.logger.Error("cli: command failed",
				"adapter", b.config.Name,
				"exit_code", result.ExitCode,
				"duration", duration,
				"stderr", truncateForLog(result.Stderr, 2000))
			return result, b.classifyError(result)
		}
		return result, fmt.Errorf("executing command: %w", err)
	}

	result.ExitCode = 0
	b.logger.Debug("cli: command completed",
		"adapter", b.config.Name,
		"duration", duration,
		"stdout_length", len(result.Stdout))
	return result, nil
}

// classifyError maps a failed subprocess to a domain error by scanning
// its output for known failure signatures.
func (b *BaseAdapter) classifyError(result *CommandResult) error {
	errorMsg := strings.TrimSpace(result.Stderr)
	if errorMsg == "" {
		errorMsg = strings.TrimSpace(result.Stdout)
	}
	if errorMsg == "" {
		errorMsg = "(no error message captured)"
	}

	errorMsgLower := strings.ToLower(errorMsg)

	if containsAny(errorMsgLower, []string{"rate limit", "too many requests", "429", "quota"}) {
		return core.ErrRateLimit(errorMsg)
	}
	if containsAny(errorMsgLower, []string{"unauthorized", "authentication", "api key", "not logged in"}) {
		return core.ErrAuth(errorMsg)
	}
	if containsAny(errorMsgLower, []string{"connection", "network", "unreachable", "dns"}) {
		return core.ErrBackend(b.config.Name, errorMsg)
	}

	return core.ErrBackend(b.config.Name,
		fmt.Sprintf("command failed with exit code %d: %s", result.ExitCode, errorMsg))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func truncateForLog(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "... [truncated]"
	}
	return s
}
