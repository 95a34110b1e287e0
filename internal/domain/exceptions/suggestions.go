package exceptions

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// SuggestionType identifies the kind of resolution suggestion.
type SuggestionType string

const (
	SuggestionNearMatch          SuggestionType = "near_match_opportunity"
	SuggestionBulkResolution     SuggestionType = "bulk_resolution_opportunity"
	SuggestionProcessImprovement SuggestionType = "process_improvement"
)

// RecordRef points at one record involved in a suggestion.
type RecordRef struct {
	Origin      ledger.Origin `json:"origin"`
	Index       int           `json:"index"`
	Date        time.Time     `json:"date"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
}

// Suggestion is one actionable finding over the exception set.
type Suggestion struct {
	Type            SuggestionType `json:"type"`
	Priority        Priority       `json:"priority"`
	Description     string         `json:"description"`
	Confidence      float64        `json:"confidence"`
	SuggestedAction string         `json:"suggested_action"`
	Records         []RecordRef    `json:"records,omitempty"`
	RecordCount     int            `json:"record_count,omitempty"`
	Pattern         string         `json:"pattern,omitempty"`
}

const (
	nearMatchLimit      = 5
	bulkLimit           = 3
	bulkMinGroup        = 3
	bulkPrefixWords     = 3
	highVolumeThreshold = 100
	staleCountThreshold = 10
	staleAgeDays        = 30
	nearMatchMinGapDays = 3
	nearMatchMaxGapDays = 10
)

// nearMatchDelta is the max amount difference for a near-match pair.
var nearMatchDelta = decimal.RequireFromString("0.01")

func suggest(internal, external []ledger.Record, now time.Time) []Suggestion {
	var suggestions []Suggestion
	suggestions = append(suggestions, suggestNearMatches(internal, external)...)
	suggestions = append(suggestions, suggestBulkResolutions(internal, external)...)
	suggestions = append(suggestions, suggestProcessImprovements(internal, external, now)...)
	return suggestions
}

// suggestNearMatches flags cross-side pairs with near-identical amounts
// but a date gap of a few days: likely the same transaction posted late.
// Description similarity nudges the confidence.
func suggestNearMatches(internal, external []ledger.Record) []Suggestion {
	var suggestions []Suggestion

	for i := range internal {
		in := &internal[i]
		if in.Date.IsZero() {
			continue
		}
		for j := range external {
			ex := &external[j]
			if ex.Date.IsZero() {
				continue
			}
			delta := in.Amount.Sub(ex.Amount).Abs()
			if delta.GreaterThan(nearMatchDelta) {
				continue
			}
			gap := int(in.Date.Sub(ex.Date).Hours() / 24)
			if gap < 0 {
				gap = -gap
			}
			if gap < nearMatchMinGapDays || gap > nearMatchMaxGapDays {
				continue
			}

			confidence := 0.7
			if descriptionAffinity(in.Keys.DescriptionNorm, ex.Keys.DescriptionNorm) >= 0.5 {
				confidence = 0.8
			}

			suggestions = append(suggestions, Suggestion{
				Type:            SuggestionNearMatch,
				Priority:        PriorityMedium,
				Description:     fmt.Sprintf("Potential match with %d day timing difference", gap),
				Confidence:      confidence,
				SuggestedAction: "manual_review",
				Records:         []RecordRef{refOf(in), refOf(ex)},
			})
			if len(suggestions) >= nearMatchLimit {
				return suggestions
			}
		}
	}

	return suggestions
}

// descriptionAffinity returns normalized Levenshtein similarity in
// [0, 1]: 1 for identical strings, 0 for fully disjoint ones.
func descriptionAffinity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ar, br := []rune(a), []rune(b)
	longest := len(ar)
	if len(br) > longest {
		longest = len(br)
	}
	dist := levenshtein.DistanceForStrings(ar, br, levenshtein.DefaultOptions)
	return 1 - float64(dist)/float64(longest)
}

// suggestBulkResolutions groups exceptions sharing a description prefix.
// Groups of three or more are candidates for one-shot categorization.
func suggestBulkResolutions(internal, external []ledger.Record) []Suggestion {
	groups := make(map[string]int)
	var order []string
	for _, side := range [][]ledger.Record{internal, external} {
		for i := range side {
			prefix := descriptionPrefix(side[i].Keys.DescriptionNorm, bulkPrefixWords)
			if prefix == "" {
				continue
			}
			if groups[prefix] == 0 {
				order = append(order, prefix)
			}
			groups[prefix]++
		}
	}

	var suggestions []Suggestion
	for _, prefix := range order {
		count := groups[prefix]
		if count < bulkMinGroup {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Type:            SuggestionBulkResolution,
			Priority:        PriorityLow,
			Description:     fmt.Sprintf("Bulk review opportunity for %q pattern", prefix),
			Confidence:      0.6,
			SuggestedAction: "bulk_categorization",
			RecordCount:     count,
			Pattern:         prefix,
		})
		if len(suggestions) >= bulkLimit {
			break
		}
	}

	return suggestions
}

// suggestProcessImprovements raises flags on the overall health of the
// reconciliation process: exception volume and staleness.
func suggestProcessImprovements(internal, external []ledger.Record, now time.Time) []Suggestion {
	var suggestions []Suggestion

	total := len(internal) + len(external)
	if total > highVolumeThreshold {
		suggestions = append(suggestions, Suggestion{
			Type:            SuggestionProcessImprovement,
			Priority:        PriorityHigh,
			Description:     fmt.Sprintf("High exception volume (%d items) suggests process review needed", total),
			Confidence:      0.8,
			SuggestedAction: "process_analysis",
		})
	}

	stale := 0
	for _, side := range [][]ledger.Record{internal, external} {
		for i := range side {
			if side[i].Date.IsZero() {
				continue
			}
			if ageDays(side[i].Date, now) > staleAgeDays {
				stale++
			}
		}
	}
	if stale > staleCountThreshold {
		suggestions = append(suggestions, Suggestion{
			Type:            SuggestionProcessImprovement,
			Priority:        PriorityMedium,
			Description:     fmt.Sprintf("%d exceptions older than %d days indicate timing issues", stale, staleAgeDays),
			Confidence:      0.7,
			SuggestedAction: "timing_analysis",
		})
	}

	return suggestions
}

func refOf(r *ledger.Record) RecordRef {
	return RecordRef{
		Origin:      r.Origin,
		Index:       r.OriginalIndex,
		Date:        r.Date,
		Amount:      r.Amount.String(),
		Description: r.Description,
	}
}
