package service

import (
	"encoding/json"
	"strings"

	"github.com/diligent-ai/diligent/internal/core"
)

// Models routinely wrap their JSON in prose or markdown fences, so the
// extractor scans for the first top-level balanced {...} region instead
// of unmarshalling the reply directly. Absent fields are defaulted, not
// fatal: partial model output is the common case.

// ExtractBalancedObject finds the first top-level balanced JSON object
// in mixed text. Braces inside string literals are ignored. Returns
// false if no balanced object exists.
func ExtractBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// ExtractAnalysisPayload locates and decodes the analysis payload
// embedded in a backend's free-form reply. A reply with no balanced
// object, or one that does not decode, is malformed and surfaces as a
// parse error attributed to the backend; it is never a panic or a
// partially filled struct.
func ExtractAnalysisPayload(backend, text string) (*core.AnalysisPayload, error) {
	raw, ok := ExtractBalancedObject(text)
	if !ok {
		return nil, core.ErrMalformedOutput(backend, "no structured payload found in reply")
	}

	// risk_score is decoded through a pointer so that "absent" and
	// "zero" stay distinguishable; absent defaults to DefaultRiskScore.
	var wire struct {
		RiskScore        *float64              `json:"risk_score"`
		Findings         []core.PayloadFinding `json:"findings"`
		ExecutiveSummary string                `json:"executive_summary"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, core.ErrMalformedOutput(backend, "payload is not valid JSON").WithCause(err)
	}

	payload := &core.AnalysisPayload{
		RiskScore:        core.DefaultRiskScore,
		Findings:         wire.Findings,
		ExecutiveSummary: wire.ExecutiveSummary,
	}
	if wire.RiskScore != nil {
		payload.RiskScore = *wire.RiskScore
	}
	return payload, nil
}

// ExtractDebatePayload locates and decodes the debate payload embedded
// in a debater's free-form reply.
func ExtractDebatePayload(backend, text string) (*core.DebatePayload, error) {
	raw, ok := ExtractBalancedObject(text)
	if !ok {
		return nil, core.ErrMalformedOutput(backend, "no structured payload found in reply")
	}

	var payload core.DebatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, core.ErrMalformedOutput(backend, "payload is not valid JSON").WithCause(err)
	}
	if strings.TrimSpace(payload.Argument) == "" {
		// Fall back to the surrounding prose so a model that argued
		// outside the JSON still contributes a turn.
		payload.Argument = strings.TrimSpace(text)
	}
	return &payload, nil
}

// ExtractJudgePayload locates and decodes the judge's payload.
func ExtractJudgePayload(backend, text string) (*core.JudgePayload, error) {
	raw, ok := ExtractBalancedObject(text)
	if !ok {
		return nil, core.ErrMalformedOutput(backend, "no structured payload found in reply")
	}

	var payload core.JudgePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, core.ErrMalformedOutput(backend, "payload is not valid JSON").WithCause(err)
	}
	return &payload, nil
}
