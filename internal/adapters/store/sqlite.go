// Package store persists analysis reports and debate records in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/diligent-ai/diligent/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore implements core.ResultStore with SQLite storage.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
	mu     sync.RWMutex
}

// NewSQLiteStore opens (or creates) the results database at dbPath and
// runs pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// WAL mode for better concurrency between serve mode readers and writers.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{dbPath: dbPath, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAnalysis persists a completed analysis report.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, report *core.AnalysisReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backendsJSON, err := json.Marshal(report.Backends)
	if err != nil {
		return fmt.Errorf("marshaling backends: %w", err)
	}
	findingsJSON, err := json.Marshal(report.Findings)
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses
		(id, created_at, mean_score, std_dev, consensus_score, agreement, backend_count, backends_json, findings_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(report.ID),
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		report.Consensus.MeanScore,
		report.Consensus.StdDev,
		report.Consensus.ConsensusScore,
		string(report.Consensus.Agreement),
		report.Consensus.BackendCount,
		string(backendsJSON),
		string(findingsJSON),
	)
	if err != nil {
		return core.ErrState("SAVE_FAILED", "saving analysis").WithCause(err)
	}
	return nil
}

// LoadAnalysis retrieves a report by ID.
func (s *SQLiteStore) LoadAnalysis(ctx context.Context, id core.AnalysisID) (*core.AnalysisReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, mean_score, std_dev, consensus_score, agreement, backend_count, backends_json, findings_json
		FROM analyses WHERE id = ?`, string(id))

	report, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound("analysis", string(id))
	}
	if err != nil {
		return nil, core.ErrState("LOAD_FAILED", "loading analysis").WithCause(err)
	}
	return report, nil
}

// ListAnalyses returns stored analyses, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]*core.AnalysisReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, mean_score, std_dev, consensus_score, agreement, backend_count, backends_json, findings_json
		FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, core.ErrState("LIST_FAILED", "listing analyses").WithCause(err)
	}
	defer rows.Close()

	var reports []*core.AnalysisReport
	for rows.Next() {
		report, err := scanAnalysis(rows)
		if err != nil {
			return nil, core.ErrState("LIST_FAILED", "scanning analysis row").WithCause(err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, core.ErrState("LIST_FAILED", "iterating analyses").WithCause(err)
	}
	return reports, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*core.AnalysisReport, error) {
	var (
		report       core.AnalysisReport
		id           string
		createdAt    string
		agreement    string
		backendsJSON string
		findingsJSON string
	)
	err := row.Scan(&id, &createdAt,
		&report.Consensus.MeanScore, &report.Consensus.StdDev,
		&report.Consensus.ConsensusScore, &agreement, &report.Consensus.BackendCount,
		&backendsJSON, &findingsJSON)
	if err != nil {
		return nil, err
	}

	report.ID = core.AnalysisID(id)
	report.Consensus.Agreement = core.AgreementLevel(agreement)
	if report.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(backendsJSON), &report.Backends); err != nil {
		return nil, fmt.Errorf("unmarshaling backends: %w", err)
	}
	if err := json.Unmarshal([]byte(findingsJSON), &report.Findings); err != nil {
		return nil, fmt.Errorf("unmarshaling findings: %w", err)
	}
	return &report, nil
}

// SaveDebate persists a terminal debate state with its transcript.
func (s *SQLiteStore) SaveDebate(ctx context.Context, state *core.DebateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ErrState("SAVE_FAILED", "beginning transaction").WithCause(err)
	}
	defer func() { _ = tx.Rollback() }()

	var verdictJSON []byte
	if state.Verdict != nil {
		if verdictJSON, err = json.Marshal(state.Verdict); err != nil {
			return fmt.Errorf("marshaling verdict: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO debates
		(id, topic, rounds, phase, failed_at, error, verdict_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(state.ID), state.Topic, state.Rounds, string(state.Phase),
		nullable(string(state.FailedAt)), nullable(state.Error),
		nullable(string(verdictJSON)),
		state.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.ErrState("SAVE_FAILED", "saving debate").WithCause(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM debate_turns WHERE debate_id = ?`, string(state.ID)); err != nil {
		return core.ErrState("SAVE_FAILED", "clearing stale turns").WithCause(err)
	}

	for i, turn := range state.Transcript {
		keyPointsJSON, err := json.Marshal(turn.KeyPoints)
		if err != nil {
			return fmt.Errorf("marshaling key points: %w", err)
		}
		evidenceJSON, err := json.Marshal(turn.EvidenceCited)
		if err != nil {
			return fmt.Errorf("marshaling evidence: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO debate_turns
			(debate_id, position, round, side, backend, argument, key_points_json, evidence_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(state.ID), i, turn.Round, string(turn.Side), turn.Backend,
			turn.Argument, string(keyPointsJSON), string(evidenceJSON),
			turn.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return core.ErrState("SAVE_FAILED", "saving debate turn").WithCause(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.ErrState("SAVE_FAILED", "committing debate").WithCause(err)
	}
	return nil
}

// LoadDebate retrieves a debate with its transcript by ID.
func (s *SQLiteStore) LoadDebate(ctx context.Context, id core.DebateID) (*core.DebateState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		state       core.DebateState
		phase       string
		failedAt    sql.NullString
		errMsg      sql.NullString
		verdictJSON sql.NullString
		createdAt   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT topic, rounds, phase, failed_at, error, verdict_json, created_at
		FROM debates WHERE id = ?`, string(id)).
		Scan(&state.Topic, &state.Rounds, &phase, &failedAt, &errMsg, &verdictJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound("debate", string(id))
	}
	if err != nil {
		return nil, core.ErrState("LOAD_FAILED", "loading debate").WithCause(err)
	}

	state.ID = id
	state.Phase = core.DebatePhase(phase)
	state.FailedAt = core.DebatePhase(failedAt.String)
	state.Error = errMsg.String
	if state.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if verdictJSON.Valid && verdictJSON.String != "" {
		var verdict core.Verdict
		if err := json.Unmarshal([]byte(verdictJSON.String), &verdict); err != nil {
			return nil, fmt.Errorf("unmarshaling verdict: %w", err)
		}
		state.Verdict = &verdict
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT round, side, backend, argument, key_points_json, evidence_json, created_at
		FROM debate_turns WHERE debate_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, core.ErrState("LOAD_FAILED", "loading debate turns").WithCause(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			turn          core.DebateTurn
			side          string
			keyPointsJSON sql.NullString
			evidenceJSON  sql.NullString
			turnCreatedAt string
		)
		if err := rows.Scan(&turn.Round, &side, &turn.Backend, &turn.Argument,
			&keyPointsJSON, &evidenceJSON, &turnCreatedAt); err != nil {
			return nil, core.ErrState("LOAD_FAILED", "scanning debate turn").WithCause(err)
		}
		turn.Side = core.DebateSide(side)
		if turn.Timestamp, err = time.Parse(time.RFC3339Nano, turnCreatedAt); err != nil {
			return nil, fmt.Errorf("parsing turn timestamp: %w", err)
		}
		if keyPointsJSON.Valid && keyPointsJSON.String != "" {
			if err := json.Unmarshal([]byte(keyPointsJSON.String), &turn.KeyPoints); err != nil {
				return nil, fmt.Errorf("unmarshaling key points: %w", err)
			}
		}
		if evidenceJSON.Valid && evidenceJSON.String != "" {
			if err := json.Unmarshal([]byte(evidenceJSON.String), &turn.EvidenceCited); err != nil {
				return nil, fmt.Errorf("unmarshaling evidence: %w", err)
			}
		}
		state.Transcript = append(state.Transcript, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, core.ErrState("LOAD_FAILED", "iterating debate turns").WithCause(err)
	}

	return &state, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
