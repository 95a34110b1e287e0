package recon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/exceptions"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/fuzzy"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/validator"
)

// Config collects the tuning knobs for all pipeline stages.
type Config struct {
	Normalizer ledger.Config
	Matcher    matcher.Config
	Fuzzy      fuzzy.Config
}

// DefaultConfig returns the standard reconciliation profile.
func DefaultConfig() Config {
	return Config{
		Normalizer: ledger.DefaultConfig(),
		Matcher:    matcher.DefaultConfig(),
		Fuzzy:      fuzzy.DefaultConfig(),
	}
}

// Pipeline runs the full reconciliation sequence. It holds no per-run
// state; Run is safe to call concurrently with distinct inputs.
type Pipeline struct {
	normalizer  *ledger.Normalizer
	chain       *matcher.Chain
	engine      *fuzzy.Engine
	categorizer *exceptions.Categorizer
	logger      *slog.Logger

	// now is swapped in tests for stable aging analysis.
	now func() time.Time
}

func NewPipeline(config Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		normalizer:  ledger.NewNormalizer(config.Normalizer),
		chain:       matcher.NewChain(config.Matcher, logger),
		engine:      fuzzy.NewEngine(config.Fuzzy, logger),
		categorizer: exceptions.NewCategorizer(logger),
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one reconciliation over the two record sets. Either a
// complete session is returned, or a validation error and no session;
// there are no partial results.
func (p *Pipeline) Run(ctx context.Context, internal, external []ledger.Record) (*Session, error) {
	started := p.now()
	p.logger.Info("reconciliation started",
		slog.Int("internal_records", len(internal)),
		slog.Int("external_records", len(external)))

	internal = p.normalizer.Normalize(internal)
	external = p.normalizer.Normalize(external)

	if err := validator.CheckInputs(internal, external); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation canceled: %w", err)
	}

	exact := p.chain.Run(internal, external)
	p.logger.Info("exact chain complete",
		slog.Int("matches", len(exact.Matches)),
		slog.Int("unmatched_internal", len(exact.UnmatchedInternal)),
		slog.Int("unmatched_external", len(exact.UnmatchedExternal)))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation canceled: %w", err)
	}

	fuzzyResult := p.engine.Run(exact.UnmatchedInternal, exact.UnmatchedExternal)

	session := &Session{
		ID:                uuid.New(),
		StartedAt:         started,
		Matches:           append(exact.Matches, fuzzyResult.Matches...),
		UnmatchedInternal: fuzzyResult.UnmatchedInternal,
		UnmatchedExternal: fuzzyResult.UnmatchedExternal,
		Potential:         fuzzyResult.Potential,
	}

	session.Exceptions = p.categorizer.Process(
		session.UnmatchedInternal, session.UnmatchedExternal, p.now())

	session.CompletedAt = p.now()
	session.Stats = computeStats(session)

	p.logger.Info("reconciliation complete",
		slog.String("session_id", session.ID.String()),
		slog.Int("total_matches", session.Stats.TotalMatches),
		slog.Int("exceptions", session.Stats.TotalExceptions),
		slog.Duration("duration", session.Duration()))
	return session, nil
}
