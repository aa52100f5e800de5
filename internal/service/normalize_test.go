package service

import (
	"testing"

	"github.com/diligent-ai/diligent/internal/core"
)

func TestNormalizeFindings(t *testing.T) {
	raw := []core.PayloadFinding{
		{Title: "  Indemnity cap missing ", Severity: "CRITICAL", Confidence: 0.85, Source: "self-important-model"},
		{Title: "Vague term", Severity: "sorta bad", Confidence: 1.7},
		{Title: "", Severity: "low", Confidence: -0.2},
	}

	got := NormalizeFindings(raw, "claude")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if got[0].Title != "Indemnity cap missing" {
		t.Errorf("Title = %q, want trimmed", got[0].Title)
	}
	if got[0].Severity != core.SeverityCritical {
		t.Errorf("Severity = %q, want critical from uppercase input", got[0].Severity)
	}
	if got[0].SourceBackend != "claude" {
		t.Errorf("SourceBackend = %q; payload's own source claim must be ignored", got[0].SourceBackend)
	}

	if got[1].Severity != core.SeverityUnknown {
		t.Errorf("Severity = %q, want unknown for invented level", got[1].Severity)
	}
	if got[1].Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", got[1].Confidence)
	}

	if got[2].Title != "Untitled finding" {
		t.Errorf("Title = %q, want placeholder for empty title", got[2].Title)
	}
	if got[2].Confidence != 0 {
		t.Errorf("Confidence = %v, want clamped to 0", got[2].Confidence)
	}
}

func TestNormalizeFindingsEmpty(t *testing.T) {
	if got := NormalizeFindings(nil, "claude"); got != nil {
		t.Errorf("want nil for empty input, got %v", got)
	}
}
