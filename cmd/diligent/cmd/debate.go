package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/config"
	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/render"
)

var debateCmd = &cobra.Command{
	Use:   "debate <topic>",
	Short: "Run an adversarial debate between two backends",
	Long: `Run a structured debate: one backend argues for the topic, another
argues against it, alternating over a fixed number of rounds. A third
backend then judges the full transcript and issues a verdict.

Role assignments default to the debate section of your config.

Examples:
  diligent debate "Should we accept this acquisition offer?"
  diligent debate --rounds 3 --for claude --against gemini --judge codex "topic"`,
	Args: cobra.ExactArgs(1),
	RunE: runDebate,
}

var (
	debateRounds  int
	debateFor     string
	debateAgainst string
	debateJudge   string
	debateJSON    bool
	debateSave    bool
)

func init() {
	rootCmd.AddCommand(debateCmd)

	debateCmd.Flags().IntVar(&debateRounds, "rounds", 0,
		"Number of debate rounds (default: from config)")
	debateCmd.Flags().StringVar(&debateFor, "for", "", "Backend arguing for")
	debateCmd.Flags().StringVar(&debateAgainst, "against", "", "Backend arguing against")
	debateCmd.Flags().StringVar(&debateJudge, "judge", "", "Backend judging the debate")
	debateCmd.Flags().BoolVar(&debateJSON, "json", false, "Emit the final state as JSON")
	debateCmd.Flags().BoolVar(&debateSave, "save", false,
		"Persist the debate to the result store even when store.enabled is false")
}

func runDebate(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping...")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	debateCfg, err := buildDebateConfig(cfg, args[0])
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg, logger)
	defer func() { _ = registry.Close() }()

	orchestrator, err := newDebateOrchestrator(registry, logger)
	if err != nil {
		return err
	}

	resultStore, err := openStore(cfg, logger, debateSave)
	if err != nil {
		return err
	}
	if resultStore != nil {
		defer func() { _ = resultStore.Close() }()
	}

	logger.Info("starting debate",
		"topic", logger.Sanitize(debateCfg.Topic),
		"rounds", debateCfg.Rounds,
		"for", debateCfg.For.Name,
		"against", debateCfg.Against.Name,
		"judge", debateCfg.Judge.Name,
	)

	state, runErr := orchestrator.Run(ctx, debateCfg)

	// Terminal states are worth keeping even when the protocol failed:
	// a partial transcript documents how far the debate got.
	if resultStore != nil && state != nil && state.Phase.Terminal() {
		saveResult(ctx, logger, func(ctx context.Context) error {
			return resultStore.SaveDebate(ctx, state)
		})
	}

	if state != nil {
		if debateJSON {
			if err := printJSON(state); err != nil {
				return err
			}
		} else {
			fmt.Print(render.Markdown(render.DebateMarkdown(state)))
		}
	}

	if runErr != nil {
		var domErr *core.DomainError
		if errors.As(runErr, &domErr) {
			return fmt.Errorf("debate failed: %s", domErr.Message)
		}
		return runErr
	}
	return nil
}

// buildDebateConfig merges flags over config defaults.
func buildDebateConfig(cfg *config.Config, topic string) (core.DebateConfig, error) {
	rounds := debateRounds
	if rounds == 0 {
		rounds = cfg.Debate.Rounds
	}

	resolve := func(flag, fallback, role string) (core.BackendDescriptor, error) {
		name := flag
		if name == "" {
			name = fallback
		}
		d, ok := cfg.Descriptor(name)
		if !ok {
			return core.BackendDescriptor{}, fmt.Errorf("unknown or disabled backend for %s: %s", role, name)
		}
		return d, nil
	}

	forDesc, err := resolve(debateFor, cfg.Debate.For, "for")
	if err != nil {
		return core.DebateConfig{}, err
	}
	againstDesc, err := resolve(debateAgainst, cfg.Debate.Against, "against")
	if err != nil {
		return core.DebateConfig{}, err
	}
	judgeDesc, err := resolve(debateJudge, cfg.Debate.Judge, "judge")
	if err != nil {
		return core.DebateConfig{}, err
	}

	return core.DebateConfig{
		Topic:   topic,
		Rounds:  rounds,
		For:     forDesc,
		Against: againstDesc,
		Judge:   judgeDesc,
	}, nil
}
