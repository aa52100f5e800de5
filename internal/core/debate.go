package core

import (
	"strings"
	"time"
)

// DebateID uniquely identifies a debate run.
type DebateID string

// DebateSide is the stance a debater argues.
type DebateSide string

const (
	SideFor     DebateSide = "for"
	SideAgainst DebateSide = "against"
)

// Opponent returns the other side.
func (s DebateSide) Opponent() DebateSide {
	if s == SideFor {
		return SideAgainst
	}
	return SideFor
}

// DebatePhase tracks where the orchestrator is in the protocol.
type DebatePhase string

const (
	PhaseSetup       DebatePhase = "setup"
	PhaseForTurn     DebatePhase = "for_turn"
	PhaseAgainstTurn DebatePhase = "against_turn"
	PhaseJudging     DebatePhase = "judging"
	PhaseVerdict     DebatePhase = "verdict"
	PhaseFailed      DebatePhase = "failed"
)

// Terminal reports whether the phase ends the debate.
func (p DebatePhase) Terminal() bool {
	return p == PhaseVerdict || p == PhaseFailed
}

// DebateTurn is one committed argument in the transcript. Turns are
// append-only; once written they are never mutated or removed.
type DebateTurn struct {
	Round         int        `json:"round"`
	Side          DebateSide `json:"side"`
	Backend       string     `json:"backend"`
	Argument      string     `json:"argument"`
	KeyPoints     []string   `json:"key_points"`
	EvidenceCited []string   `json:"evidence_cited"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Winner is the judged outcome of a debate.
type Winner string

const (
	WinnerFor     Winner = "for"
	WinnerAgainst Winner = "against"
	WinnerTie     Winner = "tie"
)

// ParseWinner coerces the judge's free-text winner field into the
// closed set {for, against, tie}. Common synonyms are accepted;
// anything else is malformed output and the judging step fails.
func ParseWinner(raw string) (Winner, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "for", "pro", "affirmative":
		return WinnerFor, true
	case "against", "con", "negative":
		return WinnerAgainst, true
	case "tie", "draw", "tied":
		return WinnerTie, true
	default:
		return "", false
	}
}

// Verdict is the judging backend's final structured decision.
type Verdict struct {
	Winner         Winner   `json:"winner"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	KeyFactors     []string `json:"key_factors"`
	Recommendation string   `json:"recommendation"`
	JudgeBackend   string   `json:"judge_backend"`
}

// DebateState is the full record of one debate invocation. It is owned
// and mutated only by the orchestrator running that debate.
type DebateState struct {
	ID         DebateID     `json:"id"`
	Topic      string       `json:"topic"`
	Rounds     int          `json:"rounds"`
	Phase      DebatePhase  `json:"phase"`
	Transcript []DebateTurn `json:"transcript"`
	Verdict    *Verdict     `json:"verdict,omitempty"`
	// FailedAt names the phase the protocol broke in, when Phase is failed.
	FailedAt DebatePhase `json:"failed_at,omitempty"`
	Error    string      `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// LastTurn returns the most recently committed turn, or nil for an
// empty transcript.
func (s *DebateState) LastTurn() *DebateTurn {
	if len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// DebateConfig assigns backends to protocol roles.
type DebateConfig struct {
	Topic   string
	Rounds  int
	For     BackendDescriptor
	Against BackendDescriptor
	Judge   BackendDescriptor
}
