package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_recon_runs",
		Up:      migration001CreateReconRuns,
	},
	{
		Version: 2,
		Name:    "create_recon_matches",
		Up:      migration002CreateReconMatches,
	},
	{
		Version: 3,
		Name:    "create_recon_exceptions",
		Up:      migration003CreateReconExceptions,
	},
	{
		Version: 4,
		Name:    "add_run_indexes",
		Up:      migration004AddRunIndexes,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		slog.Info("running migration",
			slog.Int("version", migration.Version),
			slog.String("name", migration.Name))

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

func migration001CreateReconRuns(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS recon_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		internal_count INTEGER NOT NULL DEFAULT 0,
		external_count INTEGER NOT NULL DEFAULT 0,
		match_count INTEGER NOT NULL DEFAULT 0,
		exception_count INTEGER NOT NULL DEFAULT 0,
		internal_match_rate REAL NOT NULL DEFAULT 0,
		external_match_rate REAL NOT NULL DEFAULT 0,
		stats_json TEXT,
		suggestions_json TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func migration002CreateReconMatches(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS recon_matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES recon_runs(id) ON DELETE CASCADE,
		strategy TEXT NOT NULL,
		confidence REAL NOT NULL,
		internal_index INTEGER NOT NULL,
		external_index INTEGER NOT NULL,
		internal_json TEXT NOT NULL,
		external_json TEXT NOT NULL,
		criteria_json TEXT
	)`)
	return err
}

func migration003CreateReconExceptions(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS recon_exceptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES recon_runs(id) ON DELETE CASCADE,
		origin TEXT NOT NULL,
		record_index INTEGER NOT NULL,
		category TEXT NOT NULL,
		confidence REAL NOT NULL,
		record_json TEXT NOT NULL,
		characteristics_json TEXT
	)`)
	return err
}

func migration004AddRunIndexes(tx *sql.Tx) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_recon_matches_run ON recon_matches(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recon_matches_strategy ON recon_matches(run_id, strategy)`,
		`CREATE INDEX IF NOT EXISTS idx_recon_exceptions_run ON recon_exceptions(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recon_exceptions_category ON recon_exceptions(run_id, category)`,
		`CREATE INDEX IF NOT EXISTS idx_recon_runs_started ON recon_runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
