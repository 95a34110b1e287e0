package fuzzy

import (
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
)

// Config tunes the scoring engine.
type Config struct {
	// MinConfidence is the floor below which a candidate pair is not
	// reported at all.
	MinConfidence float64
	// AutoMatchThreshold promotes a mutual-best pair to a confirmed match.
	AutoMatchThreshold float64
	// AmountTolerance is the relative amount difference (fraction of the
	// larger magnitude) under which the amount bonus applies.
	AmountTolerance decimal.Decimal
	// DateToleranceDays is the day window under which the date bonus
	// applies.
	DateToleranceDays int
	// MaxCandidates caps the candidate list kept per unmatched record.
	MaxCandidates int
	Weights       Weights
	// Workers bounds the scoring goroutines. Zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig mirrors the standard reconciliation profile: report at
// 70, auto-match at 85, 1% amount tolerance, 5-day date window.
func DefaultConfig() Config {
	return Config{
		MinConfidence:      70,
		AutoMatchThreshold: 85,
		AmountTolerance:    decimal.NewFromFloat(0.01),
		DateToleranceDays:  5,
		MaxCandidates:      3,
		Weights:            DefaultWeights(),
	}
}

const (
	amountBonus = 1.2
	dateBonus   = 1.1
)

// Candidate is one scored external record for an internal record.
type Candidate struct {
	External   *ledger.Record
	Confidence float64
	Scores     Scores
	// AmountClose and DateClose record which bonuses fired.
	AmountClose bool
	DateClose   bool
}

// PotentialMatch is an internal record with candidates that cleared the
// reporting floor but were not confident enough to auto-match. The
// records involved remain in the unmatched pools for the exception
// stage; potential matches are advisory.
type PotentialMatch struct {
	Internal   *ledger.Record
	Candidates []Candidate
}

// Result is the fuzzy stage outcome.
type Result struct {
	Matches           []matcher.Match
	Potential         []PotentialMatch
	UnmatchedInternal []ledger.Record
	UnmatchedExternal []ledger.Record
}

// Engine scores every internal/external pair in the leftover pools.
type Engine struct {
	config Config
	logger *slog.Logger
}

func NewEngine(config Config, logger *slog.Logger) *Engine {
	def := DefaultConfig()
	if config.MinConfidence == 0 {
		config.MinConfidence = def.MinConfidence
	}
	if config.AutoMatchThreshold == 0 {
		config.AutoMatchThreshold = def.AutoMatchThreshold
	}
	if config.AmountTolerance.IsZero() {
		config.AmountTolerance = def.AmountTolerance
	}
	if config.DateToleranceDays == 0 {
		config.DateToleranceDays = def.DateToleranceDays
	}
	if config.MaxCandidates == 0 {
		config.MaxCandidates = def.MaxCandidates
	}
	if config.Weights == (Weights{}) {
		config.Weights = def.Weights
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: config, logger: logger}
}

// Run scores the full cross product of the two pools in parallel, then
// serially selects mutual-best pairs above the auto-match threshold.
// Results are deterministic for a given input order: scoring writes into
// an indexed table and selection walks internals in input order,
// breaking confidence ties by external input order.
func (e *Engine) Run(internal, external []ledger.Record) *Result {
	result := &Result{}
	if len(internal) == 0 || len(external) == 0 {
		result.UnmatchedInternal = internal
		result.UnmatchedExternal = external
		return result
	}

	candidates := e.scoreAll(internal, external)

	// bestForExternal[j] is the internal index that scores j highest
	// across every candidate entry, not just row heads: an internal
	// whose own top candidate lies elsewhere still blocks a weaker
	// claimant on j.
	type claim struct {
		internal   int
		confidence float64
	}
	bestForExternal := make(map[int]claim)
	for i := range internal {
		for _, cand := range candidates[i] {
			j := e.externalIndex(external, cand.External)
			prev, ok := bestForExternal[j]
			if !ok || cand.Confidence > prev.confidence {
				bestForExternal[j] = claim{internal: i, confidence: cand.Confidence}
			}
		}
	}

	matchedInternal := make(map[int]bool)
	matchedExternal := make(map[int]bool)

	for i := range internal {
		if len(candidates[i]) == 0 {
			continue
		}
		best := candidates[i][0]
		j := e.externalIndex(external, best.External)
		if best.Confidence < e.config.AutoMatchThreshold {
			continue
		}
		if bestForExternal[j].internal != i || matchedExternal[j] {
			continue
		}

		in := internal[i]
		ex := external[j]
		result.Matches = append(result.Matches, matcher.Match{
			Strategy:   matcher.StrategyFuzzyComposite,
			Confidence: best.Confidence,
			Internal:   &in,
			External:   &ex,
			Criteria: matcher.Criteria{
				AmountDifference:   in.Amount.Sub(ex.Amount).Abs(),
				DateDifferenceDays: dateDiffDays(&in, &ex),
				SimilarityScores:   best.Scores.Map(),
				AmountMatch:        best.AmountClose,
				DateMatch:          best.DateClose,
			},
		})
		matchedInternal[i] = true
		matchedExternal[j] = true
	}

	for i := range internal {
		if matchedInternal[i] {
			continue
		}
		result.UnmatchedInternal = append(result.UnmatchedInternal, internal[i])
		if len(candidates[i]) > 0 {
			in := internal[i]
			result.Potential = append(result.Potential, PotentialMatch{
				Internal:   &in,
				Candidates: candidates[i],
			})
		}
	}
	for j := range external {
		if !matchedExternal[j] {
			result.UnmatchedExternal = append(result.UnmatchedExternal, external[j])
		}
	}

	e.logger.Debug("fuzzy stage complete",
		slog.Int("auto_matched", len(result.Matches)),
		slog.Int("potential", len(result.Potential)))
	return result
}

// scoreAll fills one candidate row per internal record. Rows are scored
// concurrently; each row is sorted by confidence descending (external
// input order on ties) and truncated to MaxCandidates.
func (e *Engine) scoreAll(internal, external []ledger.Record) [][]Candidate {
	rows := make([][]Candidate, len(internal))

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				rows[i] = e.scoreRow(&internal[i], external)
			}
		}()
	}
	for i := range internal {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return rows
}

func (e *Engine) scoreRow(in *ledger.Record, external []ledger.Record) []Candidate {
	if in.Invalid {
		return nil
	}

	var row []Candidate
	for j := range external {
		ex := &external[j]
		if ex.Invalid {
			continue
		}

		scores := Score(in.Keys.DescriptionNorm, ex.Keys.DescriptionNorm)
		confidence := scores.Weighted(e.config.Weights)

		amountClose := e.amountsClose(in.Amount, ex.Amount)
		if amountClose {
			confidence *= amountBonus
		}
		dateClose := dateDiffDays(in, ex) <= e.config.DateToleranceDays
		if dateClose {
			confidence *= dateBonus
		}
		if confidence > 100 {
			confidence = 100
		}
		if confidence < e.config.MinConfidence {
			continue
		}

		row = append(row, Candidate{
			External:    &external[j],
			Confidence:  confidence,
			Scores:      scores,
			AmountClose: amountClose,
			DateClose:   dateClose,
		})
	}

	sort.SliceStable(row, func(a, b int) bool {
		return row[a].Confidence > row[b].Confidence
	})
	if len(row) > e.config.MaxCandidates {
		row = row[:e.config.MaxCandidates]
	}
	return row
}

// amountsClose reports whether the relative difference between two
// amounts is within the configured tolerance. Two zero amounts are
// close; a zero against a nonzero is not.
func (e *Engine) amountsClose(a, b decimal.Decimal) bool {
	larger := decimal.Max(a.Abs(), b.Abs())
	if larger.IsZero() {
		return a.Equal(b)
	}
	relative := a.Sub(b).Abs().Div(larger)
	return relative.LessThanOrEqual(e.config.AmountTolerance)
}

func (e *Engine) externalIndex(external []ledger.Record, r *ledger.Record) int {
	for j := range external {
		if &external[j] == r {
			return j
		}
	}
	return -1
}

func dateDiffDays(a, b *ledger.Record) int {
	return int(math.Abs(a.Date.Sub(b.Date).Hours() / 24))
}
