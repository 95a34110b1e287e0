package storage

import (
	"errors"

	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
)

// ErrRunNotFound is returned by GetRun when no run has the given ID.
var ErrRunNotFound = errors.New("run not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	RunRepository
	Close() error
}

// RunRepository persists reconciliation runs and their artifacts
type RunRepository interface {
	// SaveSession persists a completed session: the run summary, every
	// match, and every exception, atomically.
	SaveSession(session *recon.Session) error

	// GetRun retrieves a run summary by ID
	GetRun(runID string) (*ReconRun, error)

	// ListRuns returns run summaries, newest first
	ListRuns(filters RunFilters) ([]ReconRun, error)

	// ListMatches returns a run's matches
	ListMatches(runID string, filters MatchFilters) ([]MatchRow, error)

	// ListExceptions returns a run's exceptions, optionally filtered by
	// category (empty = all)
	ListExceptions(runID string, category string) ([]ExceptionRow, error)
}
