package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

// Analyzer runs analysis mode end to end: build one role-specialized
// instruction per backend, fan out, extract and normalize each reply,
// then aggregate consensus and merge findings into a single report.
type Analyzer struct {
	dispatcher *Dispatcher
	prompts    *PromptRenderer
	aggregator *Aggregator
	logger     *logging.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(dispatcher *Dispatcher, prompts *PromptRenderer, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		dispatcher: dispatcher,
		prompts:    prompts,
		aggregator: NewAggregator(),
		logger:     logger,
	}
}

// Run executes one analysis request. Partial backend failure degrades
// the report; only invalid input or a fully prepared request that could
// not be built at all returns an error.
func (a *Analyzer) Run(ctx context.Context, req core.AnalysisRequest) (*core.AnalysisReport, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	id := core.AnalysisID(uuid.NewString())
	log := a.logger.WithAnalysis(string(id))
	log.Info("starting analysis",
		"backends", len(req.Backends),
		"text_bytes", len(req.Text))

	calls := make([]BackendCall, 0, len(req.Backends))
	for _, desc := range req.Backends {
		prompt, err := a.prompts.RenderAnalysis(AnalysisParams{Role: desc.Role, Text: req.Text})
		if err != nil {
			return nil, core.ErrValidation(core.CodeInvalidConfig, "building analysis instruction").WithCause(err)
		}
		opts := core.DefaultGenerateOptions()
		opts.Prompt = prompt
		opts.Model = desc.Model
		if desc.Timeout > 0 {
			opts.Timeout = desc.Timeout
		}
		calls = append(calls, BackendCall{Descriptor: desc, Options: opts})
	}

	raw := a.dispatcher.Dispatch(ctx, calls)

	report := &core.AnalysisReport{
		ID:        id,
		Backends:  make([]core.BackendSummary, 0, len(raw)),
		CreatedAt: time.Now().UTC(),
	}

	var scores []float64
	var groups [][]core.Finding

	for _, r := range raw {
		summary := core.BackendSummary{
			Backend:  r.Backend,
			Role:     r.Role,
			Outcome:  r.Outcome,
			Error:    r.Err,
			Duration: r.Duration,
		}

		if r.OK() {
			payload, err := ExtractAnalysisPayload(r.Backend, r.Output)
			if err != nil {
				// A reply we cannot parse is as useless as no reply;
				// demote it to a backend-level failure.
				summary.Outcome = core.OutcomeError
				summary.Error = err.Error()
				log.Warn("backend reply unusable", "backend", r.Backend, "error", err)
			} else {
				summary.RiskScore = payload.RiskScore
				summary.ExecutiveSummary = payload.ExecutiveSummary
				findings := NormalizeFindings(payload.Findings, r.Backend)
				summary.FindingCount = len(findings)
				scores = append(scores, payload.RiskScore)
				groups = append(groups, findings)
			}
		}

		report.Backends = append(report.Backends, summary)
	}

	report.Consensus = a.aggregator.Aggregate(scores)
	report.Findings = MergeFindings(groups...)

	log.Info("analysis complete",
		"succeeded", report.SucceededCount(),
		"failed", len(report.Backends)-report.SucceededCount(),
		"findings", len(report.Findings),
		"consensus_score", report.Consensus.ConsensusScore,
		"agreement", report.Consensus.Agreement)

	return report, nil
}

func validateRequest(req core.AnalysisRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return core.ErrValidation(core.CodeEmptyText, "analysis text is empty")
	}
	if len(req.Text) > core.MaxRequestTextLength {
		return core.ErrValidation(core.CodeTextTooLong, "analysis text exceeds maximum length").
			WithDetail("length", len(req.Text)).
			WithDetail("max", core.MaxRequestTextLength)
	}
	if len(req.Backends) == 0 {
		return core.ErrValidation(core.CodeNoBackends, "no backends selected for analysis")
	}
	for _, d := range req.Backends {
		if d.Timeout < 0 {
			return core.ErrValidation(core.CodeInvalidTimeout, "backend timeout must not be negative").
				WithDetail("backend", d.Name).
				WithDetail("timeout", d.Timeout.String())
		}
	}
	return nil
}
