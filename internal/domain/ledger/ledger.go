// Package ledger defines the transaction record model shared by every
// matching stage, and the normalizer that derives canonical comparison
// keys from raw records.
//
// Records arrive from ingestion with raw typed fields (date, amount,
// description, reference). The normalizer computes derived keys exactly
// once; every matcher downstream compares keys, never raw fields.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Origin identifies which ledger side a record came from.
type Origin string

const (
	// OriginInternal marks records from the internal ledger (e.g. GL entries).
	OriginInternal Origin = "internal"

	// OriginExternal marks records from the external statement (e.g. bank records).
	OriginExternal Origin = "external"
)

// Record is one transaction row from either ledger side.
//
// Raw fields are assigned at ingestion and never mutated. Keys is derived
// by the Normalizer and is a pure function of the raw fields under the
// active configuration, so normalizing the same record twice yields
// identical keys.
type Record struct {
	Origin        Origin          `json:"origin"`
	OriginalIndex int             `json:"original_index"`
	Date          time.Time       `json:"date"` // calendar day, no time component
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference,omitempty"`

	// Invalid marks a record whose date or amount could not be parsed at
	// ingestion. Invalid records receive sentinel keys and never match
	// anything; they surface later as ordinary unmatched records.
	Invalid bool `json:"invalid,omitempty"`

	Keys Keys `json:"keys"`
}

// ID returns the (origin, original index) identity used to enforce the
// one-match-per-record invariant across the whole pipeline.
func (r *Record) ID() string {
	return fmt.Sprintf("%s:%d", r.Origin, r.OriginalIndex)
}

// Usable reports whether the record can participate in matching at all.
func (r *Record) Usable() bool {
	return !r.Invalid && !r.Date.IsZero()
}

// Keys holds the canonical comparison keys derived from a record.
type Keys struct {
	// DateKey is the ISO calendar date, yyyy-mm-dd.
	DateKey string `json:"date_key"`

	// AmountKey is the signed amount rounded to the configured precision,
	// rendered with a fixed number of decimal places.
	AmountKey string `json:"amount_key"`

	// DescriptionNorm is the canonicalized free-text description.
	DescriptionNorm string `json:"description_normalized"`

	// ReferenceNorm is the canonicalized reference identifier, empty when
	// the record carries no reference.
	ReferenceNorm string `json:"reference_normalized"`

	// CompositeKey is a hex SHA-256 digest of the truncated canonical
	// fields. It is an equality shortcut only, never a similarity or
	// ordering signal.
	CompositeKey string `json:"composite_key"`
}
