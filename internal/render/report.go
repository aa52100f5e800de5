package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

// AnalysisMarkdown formats a consensus report as a markdown document.
func AnalysisMarkdown(report *core.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("# Analysis Report\n\n")
	fmt.Fprintf(&b, "**ID:** `%s`  \n", report.ID)
	fmt.Fprintf(&b, "**Created:** %s\n\n", report.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Consensus\n\n")
	c := report.Consensus
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Mean risk score | %.1f |\n", c.MeanScore)
	fmt.Fprintf(&b, "| Std deviation | %.2f |\n", c.StdDev)
	fmt.Fprintf(&b, "| Consensus score | %d/100 |\n", c.ConsensusScore)
	fmt.Fprintf(&b, "| Agreement | %s |\n", c.Agreement)
	fmt.Fprintf(&b, "| Backends scored | %d |\n\n", c.BackendCount)

	b.WriteString("## Backends\n\n")
	for _, s := range report.Backends {
		if s.Outcome == core.OutcomeSuccess {
			fmt.Fprintf(&b, "### %s (%s) — risk %.0f\n\n", s.Backend, s.Role, s.RiskScore)
			if s.ExecutiveSummary != "" {
				b.WriteString(s.ExecutiveSummary + "\n\n")
			}
			fmt.Fprintf(&b, "_%d findings in %s_\n\n", s.FindingCount, s.Duration.Round(roundUnit(s.Duration)))
		} else {
			fmt.Fprintf(&b, "### %s (%s) — failed\n\n", s.Backend, s.Role)
			fmt.Fprintf(&b, "> %s\n\n", s.Error)
		}
	}

	if len(report.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for i, f := range report.Findings {
			fmt.Fprintf(&b, "%d. **[%s]** %s _(via %s, confidence %.0f%%)_\n",
				i+1, strings.ToUpper(string(f.Severity)), f.Title, f.SourceBackend, f.Confidence*100)
			if f.Description != "" {
				fmt.Fprintf(&b, "   %s\n", f.Description)
			}
			if f.Recommendation != "" {
				fmt.Fprintf(&b, "   _Recommendation: %s_\n", f.Recommendation)
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Findings\n\nNo findings reported.\n")
	}

	return b.String()
}

// DebateMarkdown formats a debate transcript and verdict as markdown.
func DebateMarkdown(state *core.DebateState) string {
	var b strings.Builder

	b.WriteString("# Debate: " + state.Topic + "\n\n")
	fmt.Fprintf(&b, "**ID:** `%s`  \n", state.ID)
	fmt.Fprintf(&b, "**Rounds:** %d  \n", state.Rounds)
	fmt.Fprintf(&b, "**Phase:** %s\n\n", state.Phase)

	if len(state.Transcript) > 0 {
		b.WriteString("## Transcript\n\n")
		round := 0
		for _, turn := range state.Transcript {
			if turn.Round != round {
				round = turn.Round
				fmt.Fprintf(&b, "### Round %d\n\n", round)
			}
			fmt.Fprintf(&b, "**%s** (%s):\n\n%s\n\n",
				strings.ToUpper(string(turn.Side)), turn.Backend, turn.Argument)
			for _, kp := range turn.KeyPoints {
				fmt.Fprintf(&b, "- %s\n", kp)
			}
			if len(turn.KeyPoints) > 0 {
				b.WriteString("\n")
			}
		}
	}

	if state.Verdict != nil {
		v := state.Verdict
		b.WriteString("## Verdict\n\n")
		fmt.Fprintf(&b, "**Winner:** %s  \n", strings.ToUpper(string(v.Winner)))
		fmt.Fprintf(&b, "**Confidence:** %.0f%%  \n", v.Confidence*100)
		fmt.Fprintf(&b, "**Judge:** %s\n\n", v.JudgeBackend)
		if v.Reasoning != "" {
			b.WriteString(v.Reasoning + "\n\n")
		}
		for _, kf := range v.KeyFactors {
			fmt.Fprintf(&b, "- %s\n", kf)
		}
		if v.Recommendation != "" {
			fmt.Fprintf(&b, "\n_Recommendation: %s_\n", v.Recommendation)
		}
	}

	if state.Phase == core.PhaseFailed {
		b.WriteString("## Failure\n\n")
		fmt.Fprintf(&b, "The debate failed during **%s**: %s\n", state.FailedAt, state.Error)
		if last := state.LastTurn(); last != nil {
			fmt.Fprintf(&b, "\nLast committed turn: round %d, %s (%s).\n",
				last.Round, strings.ToUpper(string(last.Side)), last.Backend)
		}
	}

	return b.String()
}

func roundUnit(d time.Duration) time.Duration {
	if d >= time.Second {
		return 100 * time.Millisecond
	}
	return time.Millisecond
}
