package core

// AnalysisPayload is the canonical structured shape an analysis backend
// is instructed to embed in its reply.
type AnalysisPayload struct {
	RiskScore        float64          `json:"risk_score"`
	Findings         []PayloadFinding `json:"findings"`
	ExecutiveSummary string           `json:"executive_summary"`
}

// PayloadFinding is a finding as the backend reports it, before
// normalization. Severity and source are untrusted free text here.
type PayloadFinding struct {
	Title          string  `json:"title"`
	Severity       string  `json:"severity"`
	Description    string  `json:"description"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source,omitempty"`
}

// DebatePayload is the canonical structured shape a debating backend is
// instructed to embed in its reply.
type DebatePayload struct {
	Argument      string   `json:"argument"`
	KeyPoints     []string `json:"key_points"`
	EvidenceCited []string `json:"evidence_cited"`
}

// JudgePayload is the structured shape the judging backend returns.
type JudgePayload struct {
	Winner         string   `json:"winner"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	KeyFactors     []string `json:"key_factors"`
	Recommendation string   `json:"recommendation"`
}

// DefaultRiskScore is substituted when a backend's payload omits
// risk_score; degraded model output is the common case, not the
// exception, so absence is not fatal.
const DefaultRiskScore = 50
