package core

import "time"

// AnalysisID uniquely identifies an analysis run.
type AnalysisID string

// AnalysisRequest carries the text to analyze and the backends to fan
// out to. The text has already been resolved and truncated upstream.
type AnalysisRequest struct {
	Text     string
	Backends []BackendDescriptor
}

// Outcome tags a RawResult as success or error.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// RawResult is the per-backend outcome of one dispatch. Exactly one is
// produced per descriptor per request, in descriptor order.
type RawResult struct {
	Backend  string
	Role     string
	Outcome  Outcome
	Output   string // free-form text, set on success
	Err      string // human-readable reason, set on error
	Duration time.Duration
}

// OK reports whether the backend invocation succeeded.
func (r RawResult) OK() bool { return r.Outcome == OutcomeSuccess }

// AgreementLevel classifies cross-backend agreement by score dispersion.
type AgreementLevel string

const (
	AgreementStrong   AgreementLevel = "strong"
	AgreementModerate AgreementLevel = "moderate"
	AgreementWeak     AgreementLevel = "weak"
	AgreementNone     AgreementLevel = "none"
)

// ConsensusMetrics summarizes agreement across the backends that
// returned a usable risk score.
type ConsensusMetrics struct {
	MeanScore float64 `json:"mean_score"`
	StdDev    float64 `json:"std_dev"`
	// ConsensusScore is 0-100; higher means the backends agree more.
	ConsensusScore int            `json:"consensus_score"`
	Agreement      AgreementLevel `json:"agreement"`
	// BackendCount is the number of backends that contributed a score.
	BackendCount int `json:"backend_count"`
}

// BackendSummary is the per-backend slice of an analysis report.
type BackendSummary struct {
	Backend          string        `json:"backend"`
	Role             string        `json:"role"`
	Outcome          Outcome       `json:"outcome"`
	Error            string        `json:"error,omitempty"`
	RiskScore        float64       `json:"risk_score"`
	ExecutiveSummary string        `json:"executive_summary"`
	FindingCount     int           `json:"finding_count"`
	Duration         time.Duration `json:"duration"`
}

// AnalysisReport is the complete output of analysis mode.
type AnalysisReport struct {
	ID        AnalysisID       `json:"id"`
	Backends  []BackendSummary `json:"backends"`
	Consensus ConsensusMetrics `json:"consensus"`
	Findings  []Finding        `json:"findings"`
	CreatedAt time.Time        `json:"created_at"`
}

// SucceededCount returns how many backends completed successfully.
func (r *AnalysisReport) SucceededCount() int {
	n := 0
	for _, b := range r.Backends {
		if b.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

// MaxRequestTextLength bounds the analyzable text. Upstream extraction is
// expected to truncate before this; the validator enforces it anyway.
const MaxRequestTextLength = 400000
