package testutil

import "fmt"

// AnalysisReply builds a minimal valid analysis reply with the given
// risk score, wrapped in prose the way real backends answer.
func AnalysisReply(riskScore float64) string {
	return fmt.Sprintf(
		"Here is my assessment.\n\n```json\n{\"risk_score\": %g, \"findings\": [], \"executive_summary\": \"ok\"}\n```\n",
		riskScore)
}

// DebateReply builds a minimal valid debater reply.
func DebateReply(argument string) string {
	return fmt.Sprintf(
		"{\"argument\": %q, \"key_points\": [\"point\"], \"evidence_cited\": []}",
		argument)
}

// JudgeReply builds a minimal valid judge reply.
func JudgeReply(winner string, confidence float64) string {
	return fmt.Sprintf(
		"{\"winner\": %q, \"confidence\": %g, \"reasoning\": \"better evidence\", \"key_factors\": [\"evidence\"], \"recommendation\": \"proceed\"}",
		winner, confidence)
}
