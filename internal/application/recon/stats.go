package recon

import (
	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
)

// Confidence bands for the histogram. Perfect is exactly 100; the rest
// partition [0, 100) from the top down.
const (
	BandPerfect    = "perfect"
	BandHigh       = "high"
	BandMedium     = "medium"
	BandAcceptable = "acceptable"
)

// Stats aggregates a session for reporting.
type Stats struct {
	TotalInternal int `json:"total_internal"`
	TotalExternal int `json:"total_external"`
	TotalMatches  int `json:"total_matches"`

	// ExactMatches and FuzzyMatches split TotalMatches by stage.
	ExactMatches int `json:"exact_matches"`
	FuzzyMatches int `json:"fuzzy_matches"`

	StrategyCounts map[matcher.Strategy]int `json:"strategy_counts"`

	// Match rates are percentages of each side's input that was matched.
	InternalMatchRate float64 `json:"internal_match_rate"`
	ExternalMatchRate float64 `json:"external_match_rate"`

	ConfidenceBands map[string]int `json:"confidence_bands"`

	PotentialMatches int `json:"potential_matches"`
	TotalExceptions  int `json:"total_exceptions"`
}

func computeStats(s *Session) Stats {
	stats := Stats{
		TotalInternal:    len(s.Matches) + len(s.UnmatchedInternal),
		TotalExternal:    len(s.Matches) + len(s.UnmatchedExternal),
		TotalMatches:     len(s.Matches),
		StrategyCounts:   make(map[matcher.Strategy]int),
		ConfidenceBands:  make(map[string]int),
		PotentialMatches: len(s.Potential),
	}

	for _, m := range s.Matches {
		stats.StrategyCounts[m.Strategy]++
		if m.Strategy == matcher.StrategyFuzzyComposite {
			stats.FuzzyMatches++
		} else {
			stats.ExactMatches++
		}
		stats.ConfidenceBands[band(m.Confidence)]++
	}

	if stats.TotalInternal > 0 {
		stats.InternalMatchRate = float64(stats.TotalMatches) / float64(stats.TotalInternal) * 100
	}
	if stats.TotalExternal > 0 {
		stats.ExternalMatchRate = float64(stats.TotalMatches) / float64(stats.TotalExternal) * 100
	}
	if s.Exceptions != nil {
		stats.TotalExceptions = s.Exceptions.Total()
	}

	return stats
}

func band(confidence float64) string {
	switch {
	case confidence >= 100:
		return BandPerfect
	case confidence >= 95:
		return BandHigh
	case confidence >= 90:
		return BandMedium
	default:
		return BandAcceptable
	}
}
