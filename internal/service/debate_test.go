package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
	"github.com/diligent-ai/diligent/internal/testutil"
)

func newTestOrchestrator(t *testing.T, backends ...core.Backend) *DebateOrchestrator {
	t.Helper()
	prompts, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("prompt renderer: %v", err)
	}
	return NewDebateOrchestrator(testutil.NewMockRegistry(backends...), prompts, logging.NewNop())
}

func debateConfig(rounds int) core.DebateConfig {
	return core.DebateConfig{
		Topic:   "Should we sign this contract?",
		Rounds:  rounds,
		For:     core.BackendDescriptor{Name: "claude"},
		Against: core.BackendDescriptor{Name: "gemini"},
		Judge:   core.BackendDescriptor{Name: "codex"},
	}
}

func TestDebateTwoRounds(t *testing.T) {
	o := newTestOrchestrator(t,
		testutil.NewMockBackend("claude").WithResponses(
			testutil.DebateReply("opening for"),
			testutil.DebateReply("rebuttal for"),
		),
		testutil.NewMockBackend("gemini").WithResponses(
			testutil.DebateReply("opening against"),
			testutil.DebateReply("rebuttal against"),
		),
		testutil.NewMockBackend("codex").WithResponse(testutil.JudgeReply("for", 0.75)),
	)

	state, err := o.Run(context.Background(), debateConfig(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Phase != core.PhaseVerdict {
		t.Errorf("Phase = %q, want verdict", state.Phase)
	}
	if len(state.Transcript) != 4 {
		t.Fatalf("transcript = %d turns, want 4", len(state.Transcript))
	}

	wantOrder := []struct {
		round int
		side  core.DebateSide
		arg   string
	}{
		{1, core.SideFor, "opening for"},
		{1, core.SideAgainst, "opening against"},
		{2, core.SideFor, "rebuttal for"},
		{2, core.SideAgainst, "rebuttal against"},
	}
	for i, want := range wantOrder {
		turn := state.Transcript[i]
		if turn.Round != want.round || turn.Side != want.side || turn.Argument != want.arg {
			t.Errorf("turn %d = round %d %s %q, want round %d %s %q",
				i, turn.Round, turn.Side, turn.Argument, want.round, want.side, want.arg)
		}
	}

	if state.Verdict == nil {
		t.Fatal("verdict missing")
	}
	if state.Verdict.Winner != core.WinnerFor {
		t.Errorf("Winner = %q, want for", state.Verdict.Winner)
	}
	if state.Verdict.JudgeBackend != "codex" {
		t.Errorf("JudgeBackend = %q, want codex", state.Verdict.JudgeBackend)
	}
}

func TestDebateLaterTurnsSeeFullTranscript(t *testing.T) {
	var rebuttalPrompt string
	against := testutil.NewMockBackend("gemini").WithGenerateFunc(
		func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
			rebuttalPrompt = opts.Prompt
			return &core.GenerateResult{Output: testutil.DebateReply("the counterpoint")}, nil
		})

	var judgePrompt string
	judge := testutil.NewMockBackend("codex").WithGenerateFunc(
		func(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
			judgePrompt = opts.Prompt
			return &core.GenerateResult{Output: testutil.JudgeReply("tie", 0.5)}, nil
		})

	o := newTestOrchestrator(t,
		testutil.NewMockBackend("claude").WithResponse(testutil.DebateReply("the opening argument")),
		against, judge,
	)

	if _, err := o.Run(context.Background(), debateConfig(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(rebuttalPrompt, "the opening argument") {
		t.Error("rebuttal prompt does not quote the opening argument")
	}
	for _, arg := range []string{"the opening argument", "the counterpoint"} {
		if !strings.Contains(judgePrompt, arg) {
			t.Errorf("judge prompt missing turn %q", arg)
		}
	}
}

func TestDebateJudgeFailurePreservesTranscript(t *testing.T) {
	o := newTestOrchestrator(t,
		testutil.NewMockBackend("claude").WithResponse(testutil.DebateReply("for arg")),
		testutil.NewMockBackend("gemini").WithResponse(testutil.DebateReply("against arg")),
		testutil.NewMockBackend("codex").WithError(errors.New("judge unavailable")),
	)

	state, err := o.Run(context.Background(), debateConfig(1))
	if err == nil {
		t.Fatal("expected error")
	}

	if state.Phase != core.PhaseFailed {
		t.Errorf("Phase = %q, want failed", state.Phase)
	}
	if state.FailedAt != core.PhaseJudging {
		t.Errorf("FailedAt = %q, want judging", state.FailedAt)
	}
	if len(state.Transcript) != 2 {
		t.Errorf("transcript = %d turns, want 2 preserved", len(state.Transcript))
	}
	if state.Verdict != nil {
		t.Error("failed debate must not carry a verdict")
	}
	if !core.IsCategory(err, core.ErrCatDebate) {
		t.Errorf("category = %v, want debate", core.GetCategory(err))
	}
}

func TestDebateDebaterFailureMidRound(t *testing.T) {
	o := newTestOrchestrator(t,
		testutil.NewMockBackend("claude").WithResponse(testutil.DebateReply("for arg")),
		testutil.NewMockBackend("gemini").WithError(errors.New("rate limited")),
		testutil.NewMockBackend("codex"),
	)

	state, err := o.Run(context.Background(), debateConfig(3))
	if err == nil {
		t.Fatal("expected error")
	}

	if state.FailedAt != core.PhaseAgainstTurn {
		t.Errorf("FailedAt = %q, want against_turn", state.FailedAt)
	}
	if len(state.Transcript) != 1 {
		t.Errorf("transcript = %d turns, want the committed opening preserved", len(state.Transcript))
	}
}

func TestDebateJudgeWinnerCoercion(t *testing.T) {
	tests := []struct {
		raw     string
		want    core.Winner
		wantErr bool
	}{
		{"for", core.WinnerFor, false},
		{"PRO", core.WinnerFor, false},
		{"affirmative", core.WinnerFor, false},
		{"con", core.WinnerAgainst, false},
		{"Negative", core.WinnerAgainst, false},
		{"draw", core.WinnerTie, false},
		{" tied ", core.WinnerTie, false},
		{"the for side, mostly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			o := newTestOrchestrator(t,
				testutil.NewMockBackend("claude").WithResponse(testutil.DebateReply("a")),
				testutil.NewMockBackend("gemini").WithResponse(testutil.DebateReply("b")),
				testutil.NewMockBackend("codex").WithResponse(testutil.JudgeReply(tt.raw, 0.6)),
			)

			state, err := o.Run(context.Background(), debateConfig(1))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("winner %q should be malformed", tt.raw)
				}
				if state.Phase != core.PhaseFailed || state.FailedAt != core.PhaseJudging {
					t.Errorf("state = %q failed at %q", state.Phase, state.FailedAt)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if state.Verdict.Winner != tt.want {
				t.Errorf("Winner = %q, want %q", state.Verdict.Winner, tt.want)
			}
		})
	}
}

func TestDebateValidation(t *testing.T) {
	o := newTestOrchestrator(t,
		testutil.NewMockBackend("claude"),
		testutil.NewMockBackend("gemini"),
		testutil.NewMockBackend("codex"),
	)

	tests := []struct {
		name   string
		mutate func(*core.DebateConfig)
	}{
		{"empty topic", func(c *core.DebateConfig) { c.Topic = "  " }},
		{"zero rounds", func(c *core.DebateConfig) { c.Rounds = 0 }},
		{"negative rounds", func(c *core.DebateConfig) { c.Rounds = -2 }},
		{"missing judge", func(c *core.DebateConfig) { c.Judge.Name = "" }},
		{"judge is a debater", func(c *core.DebateConfig) { c.Judge.Name = "claude" }},
		{"negative timeout", func(c *core.DebateConfig) { c.Against.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := debateConfig(1)
			tt.mutate(&cfg)

			state, err := o.Run(context.Background(), cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if state.Phase != core.PhaseFailed || state.FailedAt != core.PhaseSetup {
				t.Errorf("Phase = %q FailedAt = %q, want failed at setup", state.Phase, state.FailedAt)
			}
			if len(state.Transcript) != 0 {
				t.Errorf("transcript = %d, want 0", len(state.Transcript))
			}
		})
	}
}
