package exceptions

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// Exception wraps one unmatched record with its classification.
type Exception struct {
	Record          ledger.Record
	Category        Category
	Confidence      float64
	Characteristics Characteristics
}

// Characteristics are derived record traits used for reporting only.
type Characteristics struct {
	AmountMagnitude   string `json:"amount_magnitude"`
	AmountType        string `json:"amount_type"`
	AmountSign        string `json:"amount_sign"`
	DescriptionLength int    `json:"description_length"`
	ContainsNumbers   bool   `json:"contains_numbers"`
	ContainsSpecial   bool   `json:"contains_special_chars"`
	DayOfWeek         string `json:"day_of_week,omitempty"`
	Month             string `json:"month,omitempty"`
	IsMonthEnd        bool   `json:"is_month_end"`
}

// Report is the categorizer output for one reconciliation run.
type Report struct {
	Internal []Exception
	External []Exception

	// CategoryCounts and CategoryPercents cover both sides combined.
	CategoryCounts   map[Category]int
	CategoryPercents map[Category]float64

	Aging       AgingReport
	Patterns    PatternReport
	Suggestions []Suggestion
}

// Total is the combined exception count.
func (r *Report) Total() int {
	return len(r.Internal) + len(r.External)
}

// Categorizer classifies unmatched records and runs the secondary
// analyses over the full exception set.
type Categorizer struct {
	logger *slog.Logger
}

func NewCategorizer(logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{logger: logger}
}

// Process classifies every unmatched record and computes aging, pattern,
// and suggestion analyses. The caller supplies "now" so that aging is
// stable within a run.
func (c *Categorizer) Process(internal, external []ledger.Record, now time.Time) *Report {
	report := &Report{
		Internal:         c.classifyAll(internal),
		External:         c.classifyAll(external),
		CategoryCounts:   make(map[Category]int),
		CategoryPercents: make(map[Category]float64),
	}

	for _, e := range report.Internal {
		report.CategoryCounts[e.Category]++
	}
	for _, e := range report.External {
		report.CategoryCounts[e.Category]++
	}
	if total := report.Total(); total > 0 {
		for cat, n := range report.CategoryCounts {
			report.CategoryPercents[cat] = float64(n) / float64(total) * 100
		}
	}

	report.Aging = analyzeAging(internal, external, now)
	report.Patterns = analyzePatterns(internal, external)
	report.Suggestions = suggest(internal, external, now)

	c.logger.Debug("exceptions categorized",
		slog.Int("internal", len(report.Internal)),
		slog.Int("external", len(report.External)),
		slog.Int("suggestions", len(report.Suggestions)))
	return report
}

func (c *Categorizer) classifyAll(records []ledger.Record) []Exception {
	out := make([]Exception, 0, len(records))
	for _, r := range records {
		category, confidence := classify(&r)
		out = append(out, Exception{
			Record:          r,
			Category:        category,
			Confidence:      confidence,
			Characteristics: characterize(&r),
		})
	}
	return out
}

// classify runs the ordered pattern rules over the normalized
// description, then falls back to amount-shape heuristics.
//
// Confidence is a heuristic in [0.5, 0.9]: 0.6 plus 0.1 per matching
// pattern of the winning category (capped at 0.9), 0.6 for amount-shape
// classifications, 0.5 for unknown.
func classify(r *ledger.Record) (Category, float64) {
	desc := r.Keys.DescriptionNorm

	for _, rl := range rules {
		if rl.pattern.MatchString(desc) {
			return rl.category, patternConfidence(desc, rl.category)
		}
	}

	abs := r.Amount.Abs()
	if abs.LessThan(decimal.NewFromInt(10)) {
		return CategoryAmount, 0.6
	}
	if r.Amount.Mod(decimal.NewFromInt(100)).IsZero() && abs.GreaterThan(decimal.NewFromInt(1000)) {
		return CategorySystem, 0.6
	}

	return CategoryUnknown, 0.5
}

func patternConfidence(desc string, category Category) float64 {
	matches := 0
	for _, rl := range rules {
		if rl.category == category && rl.pattern.MatchString(desc) {
			matches++
		}
	}
	confidence := 0.6 + float64(matches)*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	return confidence
}

var (
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

func characterize(r *ledger.Record) Characteristics {
	abs := r.Amount.Abs()

	ch := Characteristics{
		AmountMagnitude:   "large",
		AmountType:        "precise",
		AmountSign:        "zero",
		DescriptionLength: len(r.Description),
		ContainsNumbers:   digitRe.MatchString(r.Description),
		ContainsSpecial:   specialRe.MatchString(r.Description),
	}

	switch {
	case abs.LessThan(decimal.NewFromInt(100)):
		ch.AmountMagnitude = "small"
	case abs.LessThan(decimal.NewFromInt(10000)):
		ch.AmountMagnitude = "medium"
	}
	if r.Amount.Mod(decimal.NewFromInt(100)).IsZero() {
		ch.AmountType = "round"
	}
	if r.Amount.IsPositive() {
		ch.AmountSign = "positive"
	} else if r.Amount.IsNegative() {
		ch.AmountSign = "negative"
	}

	if !r.Date.IsZero() {
		ch.DayOfWeek = r.Date.Weekday().String()
		ch.Month = r.Date.Month().String()
		ch.IsMonthEnd = r.Date.Day() >= 28
	}

	return ch
}
