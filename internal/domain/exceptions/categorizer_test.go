package exceptions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newRecord(t *testing.T, origin ledger.Origin, index int, date, amount, desc string) ledger.Record {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	var d time.Time
	if date != "" {
		d, err = time.Parse("2006-01-02", date)
		require.NoError(t, err)
	}

	return ledger.NewNormalizer(ledger.DefaultConfig()).NormalizeRecord(ledger.Record{
		Origin:        origin,
		OriginalIndex: index,
		Date:          d,
		Amount:        amt,
		Description:   desc,
	})
}

func TestClassifyPatternRules(t *testing.T) {
	tests := []struct {
		desc     string
		amount   string
		category Category
	}{
		{"Pending wire transfer settlement", "500.00", CategoryTiming},
		{"Monthly service fee", "25.00", CategoryAmount},
		{"Internal journal entry", "300.00", CategoryMissing},
		{"Reversal of duplicate posting", "120.00", CategoryDuplicate},
		{"Quarterly accrual booking", "750.00", CategorySystem},
		{"Error in source data", "60.00", CategoryDataQuality},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			r := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", tc.amount, tc.desc)
			category, confidence := classify(&r)
			assert.Equal(t, tc.category, category)
			assert.GreaterOrEqual(t, confidence, 0.6)
			assert.LessOrEqual(t, confidence, 0.9)
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "pending" precedes "fee" in the rule table.
	r := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "25.00", "pending fee adjustment")
	category, _ := classify(&r)
	assert.Equal(t, CategoryTiming, category)
}

func TestClassifyAmountShapeFallbacks(t *testing.T) {
	t.Run("tiny amount", func(t *testing.T) {
		r := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "3.50", "misc posting")
		category, confidence := classify(&r)
		assert.Equal(t, CategoryAmount, category)
		assert.Equal(t, 0.6, confidence)
	})

	t.Run("large round amount", func(t *testing.T) {
		r := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "5000.00", "quarterly payout")
		category, confidence := classify(&r)
		assert.Equal(t, CategorySystem, category)
		assert.Equal(t, 0.6, confidence)
	})

	t.Run("unknown", func(t *testing.T) {
		r := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "123.45", "vendor payout batch")
		category, confidence := classify(&r)
		assert.Equal(t, CategoryUnknown, category)
		assert.Equal(t, 0.5, confidence)
	})
}

func TestClassifyMultiplePatternConfidence(t *testing.T) {
	// Two amount_differences patterns ("fee" and "adjustment") raise the
	// confidence over a single hit.
	single := newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "25.00", "service fee")
	double := newRecord(t, ledger.OriginInternal, 1, "2024-06-10", "25.00", "fee adjustment")

	_, c1 := classify(&single)
	_, c2 := classify(&double)
	assert.Greater(t, c2, c1)
}

func TestCategoryMetadata(t *testing.T) {
	timing := CategoryInfo(CategoryTiming)
	assert.True(t, timing.AutoResolvable)
	assert.Equal(t, PriorityLow, timing.ResolutionPriority)

	amount := CategoryInfo(CategoryAmount)
	assert.False(t, amount.AutoResolvable)
	assert.Equal(t, PriorityHigh, amount.ResolutionPriority)

	assert.Equal(t, CategoryUnknown, CategoryInfo("nonsense").Category)
	assert.Len(t, Categories(), 7)
}

func TestProcessCountsAndPercents(t *testing.T) {
	internal := []ledger.Record{
		newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "100.00", "pending settlement"),
		newRecord(t, ledger.OriginInternal, 1, "2024-06-10", "25.00", "wire fee"),
	}
	external := []ledger.Record{
		newRecord(t, ledger.OriginExternal, 0, "2024-06-10", "25.00", "monthly fee"),
		newRecord(t, ledger.OriginExternal, 1, "2024-06-10", "987.65", "vendor payout batch"),
	}

	report := NewCategorizer(nil).Process(internal, external, testNow)

	assert.Equal(t, 4, report.Total())
	assert.Equal(t, 1, report.CategoryCounts[CategoryTiming])
	assert.Equal(t, 2, report.CategoryCounts[CategoryAmount])
	assert.Equal(t, 1, report.CategoryCounts[CategoryUnknown])
	assert.InDelta(t, 50.0, report.CategoryPercents[CategoryAmount], 1e-9)
}

func TestCharacteristics(t *testing.T) {
	r := newRecord(t, ledger.OriginInternal, 0, "2024-06-29", "1500.00", "Invoice #42 payment")
	ch := characterize(&r)

	assert.Equal(t, "medium", ch.AmountMagnitude)
	assert.Equal(t, "round", ch.AmountType)
	assert.Equal(t, "positive", ch.AmountSign)
	assert.True(t, ch.ContainsNumbers)
	assert.True(t, ch.ContainsSpecial)
	assert.Equal(t, "Saturday", ch.DayOfWeek)
	assert.Equal(t, "June", ch.Month)
	assert.True(t, ch.IsMonthEnd)
}

func TestAgingBuckets(t *testing.T) {
	internal := []ledger.Record{
		newRecord(t, ledger.OriginInternal, 0, "2024-06-12", "10.00", "a"), // 3 days
		newRecord(t, ledger.OriginInternal, 1, "2024-05-30", "10.00", "b"), // 16 days
		newRecord(t, ledger.OriginInternal, 2, "2024-03-15", "10.00", "c"), // 92 days
		newRecord(t, ledger.OriginInternal, 3, "2022-01-01", "10.00", "d"), // > 365
	}

	aging := analyzeAging(internal, nil, testNow)

	assert.Equal(t, 1, aging.Internal.Buckets.Days0To7)
	assert.Equal(t, 1, aging.Internal.Buckets.Days8To30)
	assert.Equal(t, 1, aging.Internal.Buckets.Days91To365)
	assert.Equal(t, 1, aging.Internal.Buckets.Over365)
	assert.Equal(t, 3, aging.Internal.MinAgeDays)
	assert.Greater(t, aging.Internal.MaxAgeDays, 365)
	assert.Equal(t, SideAging{}, aging.External)
}

func TestPatternAnalysis(t *testing.T) {
	internal := []ledger.Record{
		newRecord(t, ledger.OriginInternal, 0, "2024-06-10", "100.00", "ACH transfer payroll"),
		newRecord(t, ledger.OriginInternal, 1, "2024-06-29", "42.17", "one off"),
	}
	external := []ledger.Record{
		newRecord(t, ledger.OriginExternal, 0, "2024-06-11", "200.00", "ach transfer payroll"),
	}

	patterns := analyzePatterns(internal, external)

	assert.Equal(t, 2, patterns.CommonDescriptions["ach transfer payroll"])
	assert.Equal(t, 2, patterns.RoundAmounts)
	assert.Equal(t, "42.17", patterns.AmountMin.String())
	assert.Equal(t, "200", patterns.AmountMax.String())
	assert.Equal(t, 1, patterns.MonthEndCount)
}
