package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/diligent-ai/diligent/internal/adapters/llm"
	"github.com/diligent-ai/diligent/internal/adapters/store"
	"github.com/diligent-ai/diligent/internal/config"
	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
	"github.com/diligent-ai/diligent/internal/service"
)

// loadConfig reads configuration through the shared viper instance so
// bound persistent flags take effect.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader.Load()
}

func newLogger(cfg *config.Config) *logging.Logger {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	if quiet {
		lc.Level = "error"
	}
	return logging.New(lc)
}

// buildRegistry creates the backend registry and configures every
// enabled backend from config.
func buildRegistry(cfg *config.Config, logger *logging.Logger) *llm.Registry {
	registry := llm.NewRegistry(logger)
	llm.ConfigureFromConfig(registry, cfg)
	return registry
}

// openStore opens the result store when persistence is enabled in
// config or forced by a --save flag. Returns nil when disabled.
func openStore(cfg *config.Config, logger *logging.Logger, force bool) (core.ResultStore, error) {
	if !cfg.Store.Enabled && !force {
		return nil, nil
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}
	logger.Debug("result store opened", "path", cfg.Store.Path)
	return st, nil
}

// getText resolves the input document: positional argument, --file,
// or stdin when the argument is "-".
func getText(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		if args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return "", fmt.Errorf("reading stdin: %w", err)
			}
			return string(data), nil
		}
		return args[0], nil
	}

	return "", fmt.Errorf("input required: provide as argument, via --file, or pipe with '-'")
}

// resolveDescriptors maps backend names to dispatch descriptors,
// falling back to the configured default set when names is empty.
func resolveDescriptors(cfg *config.Config, names []string) ([]core.BackendDescriptor, error) {
	if len(names) == 0 {
		descs := cfg.DefaultDescriptors()
		if len(descs) == 0 {
			return nil, fmt.Errorf("no backends enabled; check the backends section of your config")
		}
		return descs, nil
	}

	var out []core.BackendDescriptor
	for _, name := range names {
		name = strings.TrimSpace(name)
		d, ok := cfg.Descriptor(name)
		if !ok {
			return nil, fmt.Errorf("unknown or disabled backend: %s", name)
		}
		out = append(out, d)
	}
	return out, nil
}

// retryPolicy derives the dispatcher retry policy from configuration.
// max_retries counts re-attempts, so attempts = retries + 1.
func retryPolicy(cfg *config.Config) service.RetryPolicy {
	p := service.DefaultRetryPolicy()
	if cfg.Analysis.MaxRetries > 0 {
		p.MaxAttempts = cfg.Analysis.MaxRetries + 1
	}
	return p
}

// newAnalyzer assembles the analysis pipeline over a registry.
func newAnalyzer(cfg *config.Config, registry core.BackendRegistry, logger *logging.Logger) (*service.Analyzer, error) {
	prompts, err := service.NewPromptRenderer()
	if err != nil {
		return nil, err
	}
	dispatcher := service.NewDispatcher(registry, retryPolicy(cfg), logger)
	return service.NewAnalyzer(dispatcher, prompts, logger), nil
}

func newDebateOrchestrator(registry core.BackendRegistry, logger *logging.Logger) (*service.DebateOrchestrator, error) {
	prompts, err := service.NewPromptRenderer()
	if err != nil {
		return nil, err
	}
	return service.NewDebateOrchestrator(registry, prompts, logger), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// saveResult persists through the store when one is open; persistence
// failures are reported but never mask the result itself.
func saveResult(ctx context.Context, logger *logging.Logger, save func(context.Context) error) {
	if err := save(ctx); err != nil {
		logger.Warn("failed to persist result", "error", err)
	}
}
