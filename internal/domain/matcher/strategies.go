package matcher

import (
	"math"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// matchByKey is the shared join for all equality strategies. It groups
// external records by key, then walks internal records in input order and
// pairs each against the first unconsumed external with the same key.
// A key with more candidates on one side than the other pairs min(n, m)
// records; the extras stay in the pool for later strategies.
func matchByKey(
	internal, external []ledger.Record,
	keyFn func(*ledger.Record) string,
	strategy Strategy,
) ([]Match, []ledger.Record, []ledger.Record) {
	externalByKey := make(map[string][]int)
	for i := range external {
		key := keyFn(&external[i])
		if key == "" {
			continue
		}
		externalByKey[key] = append(externalByKey[key], i)
	}

	var matches []Match
	matchedExternal := make(map[int]bool)
	var remainingInternal []ledger.Record

	for i := range internal {
		key := keyFn(&internal[i])
		queue := externalByKey[key]
		if key == "" || len(queue) == 0 {
			remainingInternal = append(remainingInternal, internal[i])
			continue
		}

		// Pop the first available candidate for this key.
		j := queue[0]
		externalByKey[key] = queue[1:]
		matchedExternal[j] = true

		in := internal[i]
		ex := external[j]
		matches = append(matches, Match{
			Strategy:   strategy,
			Confidence: 100,
			Internal:   &in,
			External:   &ex,
			Criteria: Criteria{
				MatchKey:           key,
				AmountDifference:   in.Amount.Sub(ex.Amount).Abs(),
				DateDifferenceDays: dateDiffDays(&in, &ex),
			},
		})
	}

	var remainingExternal []ledger.Record
	for j := range external {
		if !matchedExternal[j] {
			remainingExternal = append(remainingExternal, external[j])
		}
	}

	return matches, remainingInternal, remainingExternal
}

// matchByReference matches on normalized reference equality, only among
// records that carry a reference at all.
func (c *Chain) matchByReference(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record) {
	return matchByKey(internal, external, func(r *ledger.Record) string {
		return r.Keys.ReferenceNorm
	}, StrategyReferenceExact)
}

// matchByAmountDate matches on exact (date, rounded amount) equality.
func (c *Chain) matchByAmountDate(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record) {
	return matchByKey(internal, external, amountDateKey, StrategyAmountDateExact)
}

// matchByAmountDateDescription tightens amount+date with a description
// prefix, catching same-day same-amount records that amount_date_exact
// left behind as contested duplicates.
func (c *Chain) matchByAmountDateDescription(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record) {
	keyLen := c.config.DescriptionKeyLen
	return matchByKey(internal, external, func(r *ledger.Record) string {
		if r.Invalid {
			return ""
		}
		return amountDateKey(r) + "_" + truncateDescription(r.Keys.DescriptionNorm, keyLen)
	}, StrategyAmountDateDescription)
}

// matchByCompositeKey matches on the full composite hash. Superset check:
// it catches cases the narrower keys missed due to partial field
// differences.
func (c *Chain) matchByCompositeKey(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record) {
	return matchByKey(internal, external, func(r *ledger.Record) string {
		if r.Invalid {
			return ""
		}
		return r.Keys.CompositeKey
	}, StrategyCompositeKey)
}

// matchByAmountTolerance pairs same-day records whose amounts differ by
// at most the configured absolute tolerance. Tolerance is a range, not an
// equality, so this is a direct O(n*m) scan; it runs last, over the
// smallest remaining pools.
//
// Confidence shades below 100 in proportion to the tolerance consumed:
// 100 * (1 - delta/tolerance * 0.1), never below 90 for in-tolerance pairs.
func (c *Chain) matchByAmountTolerance(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record) {
	tolerance := c.config.AmountTolerance

	var matches []Match
	matchedInternal := make(map[int]bool)
	matchedExternal := make(map[int]bool)

	for i := range internal {
		if internal[i].Invalid {
			continue
		}
		for j := range external {
			if matchedExternal[j] || external[j].Invalid {
				continue
			}
			if internal[i].Keys.DateKey != external[j].Keys.DateKey {
				continue
			}

			delta := internal[i].Amount.Sub(external[j].Amount).Abs()
			if delta.GreaterThan(tolerance) {
				continue
			}

			consumed, _ := delta.Div(tolerance).Float64()
			confidence := 100 * (1 - consumed*0.1)

			in := internal[i]
			ex := external[j]
			matches = append(matches, Match{
				Strategy:   StrategyAmountTolerance,
				Confidence: confidence,
				Internal:   &in,
				External:   &ex,
				Criteria: Criteria{
					AmountDifference:   delta,
					DateDifferenceDays: 0,
					ToleranceUsed:      tolerance,
				},
			})
			matchedInternal[i] = true
			matchedExternal[j] = true
			break
		}
	}

	var remainingInternal, remainingExternal []ledger.Record
	for i := range internal {
		if !matchedInternal[i] {
			remainingInternal = append(remainingInternal, internal[i])
		}
	}
	for j := range external {
		if !matchedExternal[j] {
			remainingExternal = append(remainingExternal, external[j])
		}
	}

	return matches, remainingInternal, remainingExternal
}

// amountDateKey is the (date, amount) join key. Invalid records are
// excluded outright.
func amountDateKey(r *ledger.Record) string {
	if r.Invalid {
		return ""
	}
	return r.Keys.DateKey + "_" + r.Keys.AmountKey
}

// truncateDescription cuts the normalized description to the strategy's
// prefix length.
func truncateDescription(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// dateDiffDays returns the absolute whole-day gap between two records.
func dateDiffDays(a, b *ledger.Record) int {
	return int(math.Abs(a.Date.Sub(b.Date).Hours() / 24))
}
