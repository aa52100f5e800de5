package core

import "strings"

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	// SeverityUnknown is the fallback for values the backend invented.
	// It ranks below low so such findings sort last instead of being dropped.
	SeverityUnknown Severity = "unknown"
)

// severityRanks orders severities for merging; lower sorts first.
var severityRanks = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityUnknown:  4,
}

// Rank returns the sort rank of a severity. Unrecognized values rank
// as unknown.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return severityRanks[SeverityUnknown]
}

// ParseSeverity coerces free text into a Severity. Anything that is not
// one of the four defined levels maps to SeverityUnknown.
func ParseSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// Finding is a single discrete risk or observation, attributed to the
// backend that produced it. Immutable after creation.
type Finding struct {
	Title          string   `json:"title"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	// Confidence is the backend's self-assessed confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// SourceBackend is stamped by the normalizer from the invoking
	// descriptor; the backend's own self-report is not trusted.
	SourceBackend string `json:"source_backend"`
}
