package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diligent-ai/diligent/internal/config"
	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
	"github.com/diligent-ai/diligent/internal/testutil"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Backends.Default = []string{"claude", "gemini"}
	cfg.Backends.Claude = config.BackendConfig{Enabled: true, Role: "legal"}
	cfg.Backends.Gemini = config.BackendConfig{Enabled: true, Role: "financial"}
	cfg.Backends.Codex = config.BackendConfig{Enabled: true, Role: "research"}
	cfg.Debate.Rounds = 2
	cfg.Debate.For = "claude"
	cfg.Debate.Against = "gemini"
	cfg.Debate.Judge = "codex"
	return cfg
}

func TestRetryPolicyFromConfig(t *testing.T) {
	tests := []struct {
		maxRetries   int
		wantAttempts int
	}{
		{0, 1},
		{1, 2},
		{3, 4},
		{-1, 1},
	}

	for _, tt := range tests {
		cfg := &config.Config{}
		cfg.Analysis.MaxRetries = tt.maxRetries
		if got := retryPolicy(cfg).MaxAttempts; got != tt.wantAttempts {
			t.Errorf("retryPolicy(max_retries=%d).MaxAttempts = %d, want %d",
				tt.maxRetries, got, tt.wantAttempts)
		}
	}
}

func TestAnalyzerRetriesWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.MaxRetries = 3

	// First call fails with a retryable error; the retry succeeds.
	failures := 1
	backend := testutil.NewMockBackend("claude").WithGenerateFunc(
		func(_ context.Context, _ core.GenerateOptions) (*core.GenerateResult, error) {
			if failures > 0 {
				failures--
				return nil, core.ErrBackend("claude", "transient outage")
			}
			return &core.GenerateResult{Output: testutil.AnalysisReply(60)}, nil
		})
	registry := testutil.NewMockRegistry(backend)

	analyzer, err := newAnalyzer(cfg, registry, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	desc, _ := cfg.Descriptor("claude")
	report, err := analyzer.Run(context.Background(), core.AnalysisRequest{
		Text:     "doc",
		Backends: []core.BackendDescriptor{desc},
	})
	if err != nil {
		t.Fatal(err)
	}

	if backend.CallCount() != 2 {
		t.Errorf("backend attempted %d time(s), want 2 (initial + retry)", backend.CallCount())
	}
	if report.SucceededCount() != 1 {
		t.Errorf("SucceededCount = %d, retry result should count", report.SucceededCount())
	}
}

func TestGetTextFromArg(t *testing.T) {
	text, err := getText([]string{"hello"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello" {
		t.Errorf("text = %q", text)
	}
}

func TestGetTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("file content"), 0o600); err != nil {
		t.Fatal(err)
	}

	text, err := getText(nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "file content" {
		t.Errorf("text = %q", text)
	}
}

func TestGetTextMissing(t *testing.T) {
	if _, err := getText(nil, ""); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestResolveDescriptorsDefaults(t *testing.T) {
	descs, err := resolveDescriptors(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(descs) != 2 {
		t.Fatalf("got %d descriptors", len(descs))
	}
	if descs[0].Name != "claude" || descs[1].Name != "gemini" {
		t.Errorf("descriptors = %v", descs)
	}
}

func TestResolveDescriptorsUnknown(t *testing.T) {
	_, err := resolveDescriptors(testConfig(), []string{"oracle"})
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildDebateConfigDefaults(t *testing.T) {
	debateRounds, debateFor, debateAgainst, debateJudge = 0, "", "", ""

	dc, err := buildDebateConfig(testConfig(), "should we?")
	if err != nil {
		t.Fatal(err)
	}
	if dc.Rounds != 2 {
		t.Errorf("rounds = %d", dc.Rounds)
	}
	if dc.For.Name != "claude" || dc.Against.Name != "gemini" || dc.Judge.Name != "codex" {
		t.Errorf("roles = %s/%s/%s", dc.For.Name, dc.Against.Name, dc.Judge.Name)
	}
}

func TestBuildDebateConfigFlagsoverride(t *testing.T) {
	debateRounds, debateFor, debateAgainst, debateJudge = 5, "codex", "claude", "gemini"
	defer func() { debateRounds, debateFor, debateAgainst, debateJudge = 0, "", "", "" }()

	dc, err := buildDebateConfig(testConfig(), "topic")
	if err != nil {
		t.Fatal(err)
	}
	if dc.Rounds != 5 {
		t.Errorf("rounds = %d", dc.Rounds)
	}
	if dc.For.Name != "codex" || dc.Against.Name != "claude" || dc.Judge.Name != "gemini" {
		t.Errorf("roles = %s/%s/%s", dc.For.Name, dc.Against.Name, dc.Judge.Name)
	}
}

func TestBuildDebateConfigUnknownRole(t *testing.T) {
	debateRounds, debateFor, debateAgainst, debateJudge = 0, "oracle", "", ""
	defer func() { debateFor = "" }()

	if _, err := buildDebateConfig(testConfig(), "topic"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
