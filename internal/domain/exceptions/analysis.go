package exceptions

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// AgingBuckets counts exceptions by age band.
type AgingBuckets struct {
	Days0To7    int `json:"0-7_days"`
	Days8To30   int `json:"8-30_days"`
	Days31To90  int `json:"31-90_days"`
	Days91To365 int `json:"91-365_days"`
	Over365     int `json:"over_365_days"`
}

// SideAging summarizes exception ages for one ledger side. Records
// without a usable date are excluded.
type SideAging struct {
	AverageAgeDays float64      `json:"average_age_days"`
	MedianAgeDays  float64      `json:"median_age_days"`
	MaxAgeDays     int          `json:"max_age_days"`
	MinAgeDays     int          `json:"min_age_days"`
	Buckets        AgingBuckets `json:"age_buckets"`
}

// AgingReport covers both sides.
type AgingReport struct {
	Internal SideAging `json:"internal"`
	External SideAging `json:"external"`
}

func analyzeAging(internal, external []ledger.Record, now time.Time) AgingReport {
	return AgingReport{
		Internal: agingForSide(internal, now),
		External: agingForSide(external, now),
	}
}

func agingForSide(records []ledger.Record, now time.Time) SideAging {
	var ages []int
	for i := range records {
		if records[i].Date.IsZero() {
			continue
		}
		ages = append(ages, ageDays(records[i].Date, now))
	}
	if len(ages) == 0 {
		return SideAging{}
	}

	sort.Ints(ages)

	var sum int
	var buckets AgingBuckets
	for _, age := range ages {
		sum += age
		switch {
		case age <= 7:
			buckets.Days0To7++
		case age <= 30:
			buckets.Days8To30++
		case age <= 90:
			buckets.Days31To90++
		case age <= 365:
			buckets.Days91To365++
		default:
			buckets.Over365++
		}
	}

	median := float64(ages[len(ages)/2])
	if len(ages)%2 == 0 {
		median = float64(ages[len(ages)/2-1]+ages[len(ages)/2]) / 2
	}

	return SideAging{
		AverageAgeDays: float64(sum) / float64(len(ages)),
		MedianAgeDays:  median,
		MaxAgeDays:     ages[len(ages)-1],
		MinAgeDays:     ages[0],
		Buckets:        buckets,
	}
}

func ageDays(date, now time.Time) int {
	days := int(now.Sub(date).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}

// PatternReport surfaces recurring shapes across the combined exception
// set: repeated descriptions, amount spread, and calendar clustering.
type PatternReport struct {
	CommonDescriptions map[string]int `json:"common_descriptions"`
	AmountMin          decimal.Decimal `json:"amount_min"`
	AmountMax          decimal.Decimal `json:"amount_max"`
	RoundAmounts       int             `json:"round_amounts"`
	WeekdayCounts      map[string]int  `json:"weekday_counts"`
	MonthEndCount      int             `json:"month_end_count"`
}

const commonDescriptionLimit = 10

func analyzePatterns(internal, external []ledger.Record) PatternReport {
	report := PatternReport{
		WeekdayCounts: make(map[string]int),
	}

	descCounts := make(map[string]int)
	first := true
	for _, side := range [][]ledger.Record{internal, external} {
		for i := range side {
			r := &side[i]
			if desc := r.Keys.DescriptionNorm; desc != "" {
				descCounts[desc]++
			}

			if first {
				report.AmountMin = r.Amount
				report.AmountMax = r.Amount
				first = false
			} else {
				report.AmountMin = decimal.Min(report.AmountMin, r.Amount)
				report.AmountMax = decimal.Max(report.AmountMax, r.Amount)
			}
			if r.Amount.Mod(decimal.NewFromInt(100)).IsZero() {
				report.RoundAmounts++
			}

			if !r.Date.IsZero() {
				report.WeekdayCounts[r.Date.Weekday().String()]++
				if r.Date.Day() >= 28 {
					report.MonthEndCount++
				}
			}
		}
	}

	// Keep only descriptions seen more than once, top N by count.
	type pair struct {
		desc  string
		count int
	}
	var repeated []pair
	for desc, n := range descCounts {
		if n > 1 {
			repeated = append(repeated, pair{desc, n})
		}
	}
	sort.Slice(repeated, func(a, b int) bool {
		if repeated[a].count != repeated[b].count {
			return repeated[a].count > repeated[b].count
		}
		return repeated[a].desc < repeated[b].desc
	})
	if len(repeated) > commonDescriptionLimit {
		repeated = repeated[:commonDescriptionLimit]
	}
	report.CommonDescriptions = make(map[string]int, len(repeated))
	for _, p := range repeated {
		report.CommonDescriptions[p.desc] = p.count
	}

	return report
}

// descriptionPrefix groups descriptions by their first few words for
// bulk-resolution detection.
func descriptionPrefix(desc string, words int) string {
	fields := strings.Fields(desc)
	if len(fields) > words {
		fields = fields[:words]
	}
	return strings.Join(fields, " ")
}
