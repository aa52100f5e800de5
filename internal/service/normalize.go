package service

import (
	"strings"

	"github.com/diligent-ai/diligent/internal/core"
)

// NormalizeFindings converts raw payload findings into canonical domain
// findings. Severity free text is coerced into the closed set,
// confidence is clamped to [0,1], and the source backend is stamped
// from the invoking descriptor regardless of what the payload claims
// about itself.
func NormalizeFindings(raw []core.PayloadFinding, backend string) []core.Finding {
	if len(raw) == 0 {
		return nil
	}

	findings := make([]core.Finding, 0, len(raw))
	for _, f := range raw {
		title := strings.TrimSpace(f.Title)
		if title == "" {
			title = "Untitled finding"
		}
		findings = append(findings, core.Finding{
			Title:          title,
			Severity:       core.ParseSeverity(f.Severity),
			Description:    strings.TrimSpace(f.Description),
			Recommendation: strings.TrimSpace(f.Recommendation),
			Confidence:     clamp01(f.Confidence),
			SourceBackend:  backend,
		})
	}
	return findings
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
