package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/exceptions"
)

// Storage provides SQLite database access for reconciliation runs.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveSession persists a run summary with all matches and exceptions in
// one transaction.
func (s *Storage) SaveSession(session *recon.Session) error {
	statsJSON, _ := json.Marshal(session.Stats)
	var suggestionsJSON []byte
	if session.Exceptions != nil {
		suggestionsJSON, _ = json.Marshal(session.Exceptions.Suggestions)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO recon_runs
		(id, started_at, completed_at, status,
		 internal_count, external_count, match_count, exception_count,
		 internal_match_rate, external_match_rate, stats_json, suggestions_json)
		VALUES (?, ?, ?, 'completed', ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID.String(),
		session.StartedAt.Format(time.RFC3339),
		session.CompletedAt.Format(time.RFC3339),
		session.Stats.TotalInternal,
		session.Stats.TotalExternal,
		session.Stats.TotalMatches,
		session.Stats.TotalExceptions,
		session.Stats.InternalMatchRate,
		session.Stats.ExternalMatchRate,
		string(statsJSON),
		string(suggestionsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	matchStmt, err := tx.Prepare(`
		INSERT INTO recon_matches
		(run_id, strategy, confidence, internal_index, external_index,
		 internal_json, external_json, criteria_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = matchStmt.Close() }()

	for _, m := range session.Matches {
		internalJSON, _ := json.Marshal(m.Internal)
		externalJSON, _ := json.Marshal(m.External)
		criteriaJSON, _ := json.Marshal(m.Criteria)

		_, err = matchStmt.Exec(
			session.ID.String(),
			string(m.Strategy),
			m.Confidence,
			m.Internal.OriginalIndex,
			m.External.OriginalIndex,
			string(internalJSON),
			string(externalJSON),
			string(criteriaJSON),
		)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}

	if session.Exceptions != nil {
		exStmt, err := tx.Prepare(`
			INSERT INTO recon_exceptions
			(run_id, origin, record_index, category, confidence,
			 record_json, characteristics_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer func() { _ = exStmt.Close() }()

		for _, e := range session.Exceptions.Internal {
			if err := insertException(exStmt, session.ID.String(), e); err != nil {
				return err
			}
		}
		for _, e := range session.Exceptions.External {
			if err := insertException(exStmt, session.ID.String(), e); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertException(stmt *sql.Stmt, runID string, e exceptions.Exception) error {
	recordJSON, _ := json.Marshal(e.Record)
	characteristicsJSON, _ := json.Marshal(e.Characteristics)

	_, err := stmt.Exec(
		runID,
		string(e.Record.Origin),
		e.Record.OriginalIndex,
		string(e.Category),
		e.Confidence,
		string(recordJSON),
		string(characteristicsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert exception: %w", err)
	}
	return nil
}

// GetRun retrieves a run summary by ID
func (s *Storage) GetRun(runID string) (*ReconRun, error) {
	query := `
	SELECT id, started_at, completed_at, status,
	       internal_count, external_count, match_count, exception_count,
	       internal_match_rate, external_match_rate,
	       COALESCE(stats_json, ''), COALESCE(suggestions_json, '')
	FROM recon_runs WHERE id = ?
	`

	run := &ReconRun{}
	err := s.db.QueryRow(query, runID).Scan(
		&run.ID,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Status,
		&run.InternalCount,
		&run.ExternalCount,
		&run.MatchCount,
		&run.ExceptionCount,
		&run.InternalMatchRate,
		&run.ExternalMatchRate,
		&run.StatsJSON,
		&run.SuggestionsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRuns returns run summaries, newest first
func (s *Storage) ListRuns(filters RunFilters) ([]ReconRun, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, started_at, completed_at, status,
	       internal_count, external_count, match_count, exception_count,
	       internal_match_rate, external_match_rate,
	       COALESCE(stats_json, ''), COALESCE(suggestions_json, '')
	FROM recon_runs
	`
	args := []any{}
	if filters.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filters.Status)
	}
	query += ` ORDER BY started_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ReconRun
	for rows.Next() {
		var run ReconRun
		err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.CompletedAt,
			&run.Status,
			&run.InternalCount,
			&run.ExternalCount,
			&run.MatchCount,
			&run.ExceptionCount,
			&run.InternalMatchRate,
			&run.ExternalMatchRate,
			&run.StatsJSON,
			&run.SuggestionsJSON,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListMatches returns a run's matches
func (s *Storage) ListMatches(runID string, filters MatchFilters) ([]MatchRow, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT id, run_id, strategy, confidence, internal_index, external_index,
	       internal_json, external_json, COALESCE(criteria_json, '')
	FROM recon_matches
	WHERE run_id = ?
	`
	args := []any{runID}
	if filters.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, filters.Strategy)
	}
	if filters.MinConfidence > 0 {
		query += ` AND confidence >= ?`
		args = append(args, filters.MinConfidence)
	}
	query += ` ORDER BY id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []MatchRow
	for rows.Next() {
		var m MatchRow
		err := rows.Scan(
			&m.ID,
			&m.RunID,
			&m.Strategy,
			&m.Confidence,
			&m.InternalIndex,
			&m.ExternalIndex,
			&m.InternalJSON,
			&m.ExternalJSON,
			&m.CriteriaJSON,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// ListExceptions returns a run's exceptions, optionally by category
func (s *Storage) ListExceptions(runID string, category string) ([]ExceptionRow, error) {
	query := `
	SELECT id, run_id, origin, record_index, category, confidence,
	       record_json, COALESCE(characteristics_json, '')
	FROM recon_exceptions
	WHERE run_id = ?
	`
	args := []any{runID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var exs []ExceptionRow
	for rows.Next() {
		var e ExceptionRow
		err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Origin,
			&e.Index,
			&e.Category,
			&e.Confidence,
			&e.RecordJSON,
			&e.CharacteristicsJSON,
		)
		if err != nil {
			return nil, err
		}
		exs = append(exs, e)
	}

	return exs, rows.Err()
}
