// Package validator gates the reconciliation pipeline: inputs that are
// empty or mostly unusable fail fast before any matching work starts.
package validator

import (
	"errors"
	"fmt"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// ErrValidation marks fatal input problems. Callers test with
// errors.Is.
var ErrValidation = errors.New("input validation failed")

// maxInvalidFraction is the share of unusable records a side may carry
// before the whole dataset is rejected rather than absorbed.
const maxInvalidFraction = 0.5

// CheckInputs verifies both sides are non-empty and mostly usable.
// Individual bad records are tolerated; a side that is empty or more
// than half invalid is a fatal error.
func CheckInputs(internal, external []ledger.Record) error {
	if err := checkSide(ledger.OriginInternal, internal); err != nil {
		return err
	}
	return checkSide(ledger.OriginExternal, external)
}

func checkSide(origin ledger.Origin, records []ledger.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: %s dataset is empty", ErrValidation, origin)
	}

	invalid := 0
	for i := range records {
		if records[i].Invalid {
			invalid++
		}
	}
	fraction := float64(invalid) / float64(len(records))
	if fraction > maxInvalidFraction {
		return fmt.Errorf("%w: %s dataset has %d of %d invalid records",
			ErrValidation, origin, invalid, len(records))
	}

	return nil
}
