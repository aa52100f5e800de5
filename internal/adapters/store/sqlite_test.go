package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(id string, created time.Time) *core.AnalysisReport {
	return &core.AnalysisReport{
		ID: core.AnalysisID(id),
		Backends: []core.BackendSummary{
			{Backend: "claude", Role: "legal", Outcome: core.OutcomeSuccess, RiskScore: 70, FindingCount: 1},
			{Backend: "gemini", Role: "financial", Outcome: core.OutcomeError, Error: "quota"},
		},
		Consensus: core.ConsensusMetrics{
			MeanScore:      70,
			StdDev:         0,
			ConsensusScore: 100,
			Agreement:      core.AgreementStrong,
			BackendCount:   1,
		},
		Findings: []core.Finding{
			{Title: "late fee", Severity: core.SeverityLow, Confidence: 0.6, SourceBackend: "claude"},
		},
		CreatedAt: created,
	}
}

func TestSaveLoadAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("a-1", time.Now().UTC().Truncate(time.Millisecond))
	if err := s.SaveAnalysis(ctx, report); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	loaded, err := s.LoadAnalysis(ctx, report.ID)
	if err != nil {
		t.Fatalf("LoadAnalysis: %v", err)
	}

	if loaded.ID != report.ID {
		t.Errorf("ID = %q", loaded.ID)
	}
	if loaded.Consensus != report.Consensus {
		t.Errorf("Consensus = %+v, want %+v", loaded.Consensus, report.Consensus)
	}
	if len(loaded.Backends) != 2 || loaded.Backends[1].Error != "quota" {
		t.Errorf("Backends = %+v", loaded.Backends)
	}
	if len(loaded.Findings) != 1 || loaded.Findings[0].SourceBackend != "claude" {
		t.Errorf("Findings = %+v", loaded.Findings)
	}
	if !loaded.CreatedAt.Equal(report.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, report.CreatedAt)
	}
}

func TestLoadAnalysisNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadAnalysis(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("category = %v, want not_found", core.GetCategory(err))
	}
}

func TestListAnalysesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.SaveAnalysis(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveAnalysis(%s): %v", id, err)
		}
	}

	reports, err := s.ListAnalyses(ctx, 2)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len = %d, want limit honored", len(reports))
	}
	if reports[0].ID != "new" || reports[1].ID != "mid" {
		t.Errorf("order = [%s, %s], want newest first", reports[0].ID, reports[1].ID)
	}
}

func TestSaveLoadDebate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state := &core.DebateState{
		ID:     "d-1",
		Topic:  "sign the contract",
		Rounds: 1,
		Phase:  core.PhaseVerdict,
		Transcript: []core.DebateTurn{
			{Round: 1, Side: core.SideFor, Backend: "claude", Argument: "yes because",
				KeyPoints: []string{"k1"}, Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
			{Round: 1, Side: core.SideAgainst, Backend: "gemini", Argument: "no because",
				EvidenceCited: []string{"e1"}, Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
		},
		Verdict: &core.Verdict{
			Winner: core.WinnerAgainst, Confidence: 0.7, Reasoning: "better evidence", JudgeBackend: "codex",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.SaveDebate(ctx, state); err != nil {
		t.Fatalf("SaveDebate: %v", err)
	}

	loaded, err := s.LoadDebate(ctx, state.ID)
	if err != nil {
		t.Fatalf("LoadDebate: %v", err)
	}

	if loaded.Phase != core.PhaseVerdict {
		t.Errorf("Phase = %q", loaded.Phase)
	}
	if len(loaded.Transcript) != 2 {
		t.Fatalf("transcript = %d turns", len(loaded.Transcript))
	}
	if loaded.Transcript[0].Argument != "yes because" || loaded.Transcript[0].KeyPoints[0] != "k1" {
		t.Errorf("turn 0 = %+v", loaded.Transcript[0])
	}
	if loaded.Transcript[1].EvidenceCited[0] != "e1" {
		t.Errorf("turn 1 = %+v", loaded.Transcript[1])
	}
	if loaded.Verdict == nil || loaded.Verdict.Winner != core.WinnerAgainst {
		t.Errorf("Verdict = %+v", loaded.Verdict)
	}
}

func TestSaveLoadFailedDebate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state := &core.DebateState{
		ID:       "d-failed",
		Topic:    "t",
		Rounds:   2,
		Phase:    core.PhaseFailed,
		FailedAt: core.PhaseJudging,
		Error:    "judge unavailable",
		Transcript: []core.DebateTurn{
			{Round: 1, Side: core.SideFor, Backend: "claude", Argument: "a", Timestamp: time.Now().UTC()},
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.SaveDebate(ctx, state); err != nil {
		t.Fatalf("SaveDebate: %v", err)
	}

	loaded, err := s.LoadDebate(ctx, state.ID)
	if err != nil {
		t.Fatalf("LoadDebate: %v", err)
	}
	if loaded.FailedAt != core.PhaseJudging || loaded.Error != "judge unavailable" {
		t.Errorf("failure fields = %q / %q", loaded.FailedAt, loaded.Error)
	}
	if loaded.Verdict != nil {
		t.Error("failed debate must load without a verdict")
	}
	if len(loaded.Transcript) != 1 {
		t.Errorf("transcript = %d turns, want preserved", len(loaded.Transcript))
	}
}

func TestLoadDebateNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadDebate(context.Background(), "missing")
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("want not_found, got %v", err)
	}
}
