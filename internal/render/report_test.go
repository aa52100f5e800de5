package render

import (
	"strings"
	"testing"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

func TestAnalysisMarkdown(t *testing.T) {
	report := &core.AnalysisReport{
		ID: "a-1",
		Backends: []core.BackendSummary{
			{Backend: "claude", Role: "legal", Outcome: core.OutcomeSuccess, RiskScore: 70, ExecutiveSummary: "Mostly fine.", FindingCount: 1, Duration: 3 * time.Second},
			{Backend: "gemini", Role: "financial", Outcome: core.OutcomeError, Error: "backend timed out"},
		},
		Consensus: core.ConsensusMetrics{MeanScore: 70, StdDev: 0, ConsensusScore: 100, Agreement: core.AgreementStrong, BackendCount: 1},
		Findings: []core.Finding{
			{Title: "Unbounded liability clause", Severity: core.SeverityCritical, Confidence: 0.9, SourceBackend: "claude", Recommendation: "Cap it."},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	md := AnalysisMarkdown(report)

	for _, want := range []string{
		"# Analysis Report",
		"| Consensus score | 100/100 |",
		"| Agreement | strong |",
		"### claude (legal) — risk 70",
		"### gemini (financial) — failed",
		"> backend timed out",
		"[CRITICAL] Unbounded liability clause",
		"confidence 90%",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestAnalysisMarkdownNoFindings(t *testing.T) {
	md := AnalysisMarkdown(&core.AnalysisReport{ID: "a-2"})
	if !strings.Contains(md, "No findings reported.") {
		t.Errorf("markdown missing empty-findings note:\n%s", md)
	}
}

func TestDebateMarkdown(t *testing.T) {
	state := &core.DebateState{
		ID:     "d-1",
		Topic:  "Should we sign?",
		Rounds: 1,
		Phase:  core.PhaseVerdict,
		Transcript: []core.DebateTurn{
			{Round: 1, Side: core.SideFor, Backend: "claude", Argument: "Yes, because.", KeyPoints: []string{"upside"}},
			{Round: 1, Side: core.SideAgainst, Backend: "gemini", Argument: "No, because."},
		},
		Verdict: &core.Verdict{Winner: core.WinnerAgainst, Confidence: 0.75, Reasoning: "Stronger case.", JudgeBackend: "codex"},
	}

	md := DebateMarkdown(state)

	for _, want := range []string{
		"# Debate: Should we sign?",
		"### Round 1",
		"**FOR** (claude)",
		"**AGAINST** (gemini)",
		"**Winner:** AGAINST",
		"**Confidence:** 75%",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestDebateMarkdownFailed(t *testing.T) {
	state := &core.DebateState{
		ID:       "d-2",
		Topic:    "t",
		Phase:    core.PhaseFailed,
		FailedAt: core.PhaseJudging,
		Error:    "judge returned garbage",
		Transcript: []core.DebateTurn{
			{Round: 1, Side: core.SideFor, Backend: "claude", Argument: "Yes."},
			{Round: 1, Side: core.SideAgainst, Backend: "gemini", Argument: "No."},
		},
	}

	md := DebateMarkdown(state)
	if !strings.Contains(md, "failed during **judging**") {
		t.Errorf("markdown missing failure section:\n%s", md)
	}
	if !strings.Contains(md, "Last committed turn: round 1, AGAINST (gemini).") {
		t.Errorf("markdown missing last-turn note:\n%s", md)
	}
	if strings.Contains(md, "## Verdict") {
		t.Error("failed debate must not render a verdict")
	}
}

func TestDebateMarkdownFailedBeforeAnyTurn(t *testing.T) {
	state := &core.DebateState{
		ID:       "d-3",
		Topic:    "t",
		Phase:    core.PhaseFailed,
		FailedAt: core.PhaseSetup,
		Error:    "judge must be distinct from both debaters",
	}

	md := DebateMarkdown(state)
	if !strings.Contains(md, "failed during **setup**") {
		t.Errorf("markdown missing failure section:\n%s", md)
	}
	if strings.Contains(md, "Last committed turn") {
		t.Error("empty transcript must not render a last turn")
	}
}
