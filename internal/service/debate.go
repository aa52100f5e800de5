package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

// DebateOrchestrator runs the sequential adversarial protocol: for and
// against alternate turns for a fixed number of rounds, then a third
// backend judges the full transcript. Turns run strictly one at a time
// because each debater must see everything said before it speaks.
type DebateOrchestrator struct {
	registry core.BackendRegistry
	prompts  *PromptRenderer
	logger   *logging.Logger
}

// NewDebateOrchestrator creates a debate orchestrator.
func NewDebateOrchestrator(registry core.BackendRegistry, prompts *PromptRenderer, logger *logging.Logger) *DebateOrchestrator {
	return &DebateOrchestrator{
		registry: registry,
		prompts:  prompts,
		logger:   logger,
	}
}

// Run executes one debate. On protocol failure the returned state has
// Phase failed with the transcript accumulated so far intact, and the
// error carries the phase that broke; callers get both.
func (o *DebateOrchestrator) Run(ctx context.Context, cfg core.DebateConfig) (*core.DebateState, error) {
	state := &core.DebateState{
		ID:        core.DebateID(uuid.NewString()),
		Topic:     cfg.Topic,
		Rounds:    cfg.Rounds,
		Phase:     core.PhaseSetup,
		CreatedAt: time.Now().UTC(),
	}

	if err := validateDebateConfig(cfg); err != nil {
		return o.fail(state, core.PhaseSetup, err)
	}

	log := o.logger.WithDebate(string(state.ID))
	log.Info("starting debate",
		"topic", cfg.Topic,
		"rounds", cfg.Rounds,
		"for", cfg.For.Name,
		"against", cfg.Against.Name,
		"judge", cfg.Judge.Name)

	for round := 1; round <= cfg.Rounds; round++ {
		if err := o.takeTurn(ctx, state, cfg.For, core.SideFor, round, log); err != nil {
			return o.fail(state, core.PhaseForTurn, err)
		}
		if err := o.takeTurn(ctx, state, cfg.Against, core.SideAgainst, round, log); err != nil {
			return o.fail(state, core.PhaseAgainstTurn, err)
		}
	}

	state.Phase = core.PhaseJudging
	verdict, err := o.judge(ctx, state, cfg.Judge, log)
	if err != nil {
		return o.fail(state, core.PhaseJudging, err)
	}

	state.Verdict = verdict
	state.Phase = core.PhaseVerdict
	log.Info("debate concluded",
		"winner", verdict.Winner,
		"confidence", verdict.Confidence,
		"turns", len(state.Transcript))

	return state, nil
}

// takeTurn renders the instruction from the full transcript, invokes
// one debater, and commits its argument. Any failure aborts the debate.
func (o *DebateOrchestrator) takeTurn(ctx context.Context, state *core.DebateState, desc core.BackendDescriptor, side core.DebateSide, round int, log *logging.Logger) error {
	if side == core.SideFor {
		state.Phase = core.PhaseForTurn
	} else {
		state.Phase = core.PhaseAgainstTurn
	}

	prompt, err := o.prompts.RenderDebateTurn(DebateTurnParams{
		Topic:      state.Topic,
		Side:       side,
		Round:      round,
		Rounds:     state.Rounds,
		Transcript: state.Transcript,
	})
	if err != nil {
		return err
	}

	output, err := o.invoke(ctx, desc, prompt)
	if err != nil {
		return err
	}

	payload, err := ExtractDebatePayload(desc.Name, output)
	if err != nil {
		return err
	}

	state.Transcript = append(state.Transcript, core.DebateTurn{
		Round:         round,
		Side:          side,
		Backend:       desc.Name,
		Argument:      payload.Argument,
		KeyPoints:     payload.KeyPoints,
		EvidenceCited: payload.EvidenceCited,
		Timestamp:     time.Now().UTC(),
	})

	log.Debug("turn committed",
		"round", round,
		"side", side,
		"backend", desc.Name,
		"argument_bytes", len(payload.Argument))
	return nil
}

// judge invokes the judging backend over the complete transcript and
// coerces its decision into the closed winner set.
func (o *DebateOrchestrator) judge(ctx context.Context, state *core.DebateState, desc core.BackendDescriptor, log *logging.Logger) (*core.Verdict, error) {
	prompt, err := o.prompts.RenderJudge(JudgeParams{
		Topic:      state.Topic,
		Rounds:     state.Rounds,
		Transcript: state.Transcript,
	})
	if err != nil {
		return nil, err
	}

	output, err := o.invoke(ctx, desc, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJudgePayload(desc.Name, output)
	if err != nil {
		return nil, err
	}

	winner, ok := core.ParseWinner(payload.Winner)
	if !ok {
		return nil, core.ErrMalformedOutput(desc.Name, "judge named an unrecognized winner").
			WithDetail("winner", payload.Winner)
	}

	log.Debug("judge ruled", "backend", desc.Name, "winner", winner)

	return &core.Verdict{
		Winner:         winner,
		Confidence:     clamp01(payload.Confidence),
		Reasoning:      payload.Reasoning,
		KeyFactors:     payload.KeyFactors,
		Recommendation: payload.Recommendation,
		JudgeBackend:   desc.Name,
	}, nil
}

func (o *DebateOrchestrator) invoke(ctx context.Context, desc core.BackendDescriptor, prompt string) (string, error) {
	backend, err := o.registry.Get(desc.Name)
	if err != nil {
		return "", err
	}

	callCtx := ctx
	if desc.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, desc.Timeout)
		defer cancel()
	}

	opts := core.DefaultGenerateOptions()
	opts.Prompt = prompt
	opts.Model = desc.Model
	if desc.Timeout > 0 {
		opts.Timeout = desc.Timeout
	}

	result, err := backend.Generate(callCtx, opts)
	if err != nil {
		return "", err
	}
	return result.Output, nil
}

// fail moves the state to its terminal failed phase, preserving the
// transcript, and wraps the cause with the phase that broke.
func (o *DebateOrchestrator) fail(state *core.DebateState, at core.DebatePhase, cause error) (*core.DebateState, error) {
	err := core.ErrDebateFailed(at, cause)
	state.Phase = core.PhaseFailed
	state.FailedAt = at
	state.Error = cause.Error()
	o.logger.WithDebate(string(state.ID)).Error("debate failed",
		"phase", at,
		"turns", len(state.Transcript),
		"error", cause)
	return state, err
}

func validateDebateConfig(cfg core.DebateConfig) error {
	if strings.TrimSpace(cfg.Topic) == "" {
		return core.ErrValidation(core.CodeEmptyText, "debate topic is empty")
	}
	if cfg.Rounds < 1 {
		return core.ErrValidation(core.CodeInvalidRounds, "debate needs at least one round").
			WithDetail("rounds", cfg.Rounds)
	}
	for _, d := range []core.BackendDescriptor{cfg.For, cfg.Against, cfg.Judge} {
		if d.Name == "" {
			return core.ErrValidation(core.CodeNoBackends, "debate requires for, against, and judge backends")
		}
		if d.Timeout < 0 {
			return core.ErrValidation(core.CodeInvalidTimeout, "backend timeout must not be negative").
				WithDetail("backend", d.Name).
				WithDetail("timeout", d.Timeout.String())
		}
	}
	if cfg.Judge.Name == cfg.For.Name || cfg.Judge.Name == cfg.Against.Name {
		return core.ErrValidation(core.CodeInvalidConfig, "judge must be distinct from both debaters").
			WithDetail("judge", cfg.Judge.Name)
	}
	return nil
}
