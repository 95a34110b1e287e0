// Package recon orchestrates a reconciliation run: normalization, the
// exact strategy chain, the fuzzy engine, and exception categorization,
// accumulated into an immutable session result.
package recon

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/exceptions"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/fuzzy"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
)

// Session is the complete result of one reconciliation run. It is built
// once by Pipeline.Run and never mutated afterward; a new run needs a
// new session.
type Session struct {
	ID          uuid.UUID `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Matches           []matcher.Match        `json:"matches"`
	UnmatchedInternal []ledger.Record        `json:"unmatched_internal"`
	UnmatchedExternal []ledger.Record        `json:"unmatched_external"`
	Potential         []fuzzy.PotentialMatch `json:"potential_matches,omitempty"`

	Exceptions *exceptions.Report `json:"exceptions"`
	Stats      Stats              `json:"stats"`
}

// Duration is the wall time the run took.
func (s *Session) Duration() time.Duration {
	return s.CompletedAt.Sub(s.StartedAt)
}
