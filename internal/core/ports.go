package core

import "context"

// ResultStore is the narrow port behind which the persistence
// collaborator lives. The orchestration core never touches storage
// directly; serve mode and the CLI optionally write reports through it.
type ResultStore interface {
	// SaveAnalysis persists a completed analysis report.
	SaveAnalysis(ctx context.Context, report *AnalysisReport) error

	// LoadAnalysis retrieves a report by ID.
	// Returns a not_found error if it does not exist.
	LoadAnalysis(ctx context.Context, id AnalysisID) (*AnalysisReport, error)

	// ListAnalyses returns summaries of stored analyses, newest first.
	ListAnalyses(ctx context.Context, limit int) ([]*AnalysisReport, error)

	// SaveDebate persists a terminal debate state (verdict or failed).
	SaveDebate(ctx context.Context, state *DebateState) error

	// LoadDebate retrieves a debate by ID.
	LoadDebate(ctx context.Context, id DebateID) (*DebateState, error)

	// Close releases the underlying storage handle.
	Close() error
}
