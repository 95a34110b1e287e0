package matcher

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// Chain runs exact matching strategies in priority order.
type Chain struct {
	config Config
	logger *slog.Logger
}

// NewChain creates a chain with the given config.
func NewChain(config Config, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if config.AmountTolerance.IsZero() {
		config.AmountTolerance = decimal.RequireFromString("0.01")
	}
	if config.DescriptionKeyLen <= 0 {
		config.DescriptionKeyLen = 20
	}
	if len(config.Strategies) == 0 {
		config.Strategies = DefaultStrategies()
	}
	return &Chain{config: config, logger: logger}
}

// Run applies each configured strategy to the still-unmatched remainder
// of both sides. Records must already be normalized.
//
// Within one strategy, records sharing a key are paired first-in
// first-out; leftover candidates for a contested key fall through to the
// next, stricter context rather than being guessed at.
func (c *Chain) Run(internal, external []ledger.Record) *Result {
	result := &Result{
		StrategyCounts: make(map[Strategy]int, len(c.config.Strategies)),
	}

	remainingInternal := internal
	remainingExternal := external

	for _, strategy := range c.config.Strategies {
		fn, ok := c.strategyFunc(strategy)
		if !ok {
			c.logger.Warn("unknown exact matching strategy, skipping", "strategy", string(strategy))
			continue
		}

		matches, nextInternal, nextExternal := fn(remainingInternal, remainingExternal)

		result.Matches = append(result.Matches, matches...)
		result.StrategyCounts[strategy] = len(matches)
		remainingInternal = nextInternal
		remainingExternal = nextExternal

		c.logger.Debug("exact strategy complete",
			"strategy", string(strategy),
			"matches", len(matches),
			"internal_remaining", len(remainingInternal),
			"external_remaining", len(remainingExternal))

		if len(remainingInternal) == 0 || len(remainingExternal) == 0 {
			break
		}
	}

	result.UnmatchedInternal = remainingInternal
	result.UnmatchedExternal = remainingExternal
	return result
}

type strategyFunc func(internal, external []ledger.Record) ([]Match, []ledger.Record, []ledger.Record)

func (c *Chain) strategyFunc(strategy Strategy) (strategyFunc, bool) {
	switch strategy {
	case StrategyReferenceExact:
		return c.matchByReference, true
	case StrategyAmountDateExact:
		return c.matchByAmountDate, true
	case StrategyAmountDateDescription:
		return c.matchByAmountDateDescription, true
	case StrategyCompositeKey:
		return c.matchByCompositeKey, true
	case StrategyAmountTolerance:
		return c.matchByAmountTolerance, true
	default:
		return nil, false
	}
}
