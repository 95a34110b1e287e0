// Package matcher implements the exact matching strategy chain for
// ledger reconciliation.
//
// Strategies run in a fixed priority order, each consuming the
// still-unmatched remainder of both sides, so higher-precision rules
// claim records before looser ones get a chance:
//
//  1. reference_exact   - equality on normalized reference
//  2. amount_date_exact - equality on (date key, amount key)
//  3. amount_date_desc  - equality on (date key, amount key, description prefix)
//  4. composite_key     - equality on the composite hash
//  5. amount_tolerance  - same date, amount within an absolute tolerance
//
// A record matched by any strategy is removed from both pools before the
// next strategy executes, which enforces the one-match-per-record
// invariant by construction.
package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// Strategy names the rule that produced a match.
type Strategy string

const (
	StrategyReferenceExact        Strategy = "reference_exact"
	StrategyAmountDateExact       Strategy = "amount_date_exact"
	StrategyAmountDateDescription Strategy = "amount_date_desc"
	StrategyCompositeKey          Strategy = "composite_key"
	StrategyAmountTolerance       Strategy = "amount_tolerance"

	// StrategyFuzzyComposite tags matches produced by the fuzzy engine
	// downstream of the exact chain.
	StrategyFuzzyComposite Strategy = "fuzzy_composite"
)

// DefaultStrategies returns the exact strategies in default priority
// order: cheapest and most precise first, the one quadratic strategy last.
func DefaultStrategies() []Strategy {
	return []Strategy{
		StrategyReferenceExact,
		StrategyAmountDateExact,
		StrategyAmountDateDescription,
		StrategyCompositeKey,
		StrategyAmountTolerance,
	}
}

// Criteria carries strategy-specific match evidence.
type Criteria struct {
	MatchKey           string          `json:"match_key,omitempty"`
	AmountDifference   decimal.Decimal `json:"amount_difference"`
	DateDifferenceDays int             `json:"date_difference_days"`
	ToleranceUsed      decimal.Decimal `json:"tolerance_used,omitempty"`

	// Fuzzy-only evidence.
	SimilarityScores map[string]float64 `json:"similarity_scores,omitempty"`
	AmountMatch      bool               `json:"amount_match,omitempty"`
	DateMatch        bool               `json:"date_match,omitempty"`
}

// Match pairs one internal record with one external record.
type Match struct {
	Strategy Strategy `json:"strategy"`

	// Confidence is 0-100. Exact strategies yield 100, except
	// amount_tolerance which shades slightly below 100 in proportion to
	// the tolerance consumed.
	Confidence float64 `json:"confidence"`

	Internal *ledger.Record `json:"internal_record"`
	External *ledger.Record `json:"external_record"`
	Criteria Criteria       `json:"criteria"`
}

// Config holds exact chain configuration.
type Config struct {
	// AmountTolerance is the absolute tolerance used by the
	// amount_tolerance strategy (default: 0.01).
	AmountTolerance decimal.Decimal

	// DescriptionKeyLen is the description prefix length used by the
	// amount_date_desc strategy (default: 20).
	DescriptionKeyLen int

	// Strategies overrides the default strategy list and order.
	// Unknown names are skipped. Nil means DefaultStrategies.
	Strategies []Strategy
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		AmountTolerance:   decimal.RequireFromString("0.01"),
		DescriptionKeyLen: 20,
		Strategies:        DefaultStrategies(),
	}
}

// Result is the outcome of running the exact chain over two pools.
type Result struct {
	Matches           []Match
	UnmatchedInternal []ledger.Record
	UnmatchedExternal []ledger.Record

	// StrategyCounts records how many matches each strategy produced.
	StrategyCounts map[Strategy]int
}
