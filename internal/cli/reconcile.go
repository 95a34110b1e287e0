package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Sohaniboston/Smart-Recon/internal/adapters/sources/csvfile"
	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/config"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/logging"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/storage"
)

// RunReconcile loads both CSV sources, runs the pipeline, and persists
// the session unless -dry-run is set.
func RunReconcile(cfg *config.Config, flags *ReconcileFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "recon")

	internalSource := cfg.Sources.Internal
	externalSource := cfg.Sources.External
	if flags.InternalPath != "" {
		internalSource.Path = flags.InternalPath
	}
	if flags.ExternalPath != "" {
		externalSource.Path = flags.ExternalPath
	}
	if internalSource.Path == "" || externalSource.Path == "" {
		return fmt.Errorf("both internal and external source paths are required")
	}

	internal, err := readSource(internalSource, ledger.OriginInternal, logger)
	if err != nil {
		return err
	}
	external, err := readSource(externalSource, ledger.OriginExternal, logger)
	if err != nil {
		return err
	}

	if !flags.JSONOutput {
		PrintHeader(internalSource.Path, externalSource.Path)
	}

	pipeline := recon.NewPipeline(cfg.PipelineConfig(), logger)
	session, err := pipeline.Run(context.Background(), internal, external)
	if err != nil {
		return err
	}

	if !flags.DryRun {
		store, err := storage.NewStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.SaveSession(session); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	if flags.JSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(session)
	}

	PrintSessionSummary(session)
	return nil
}

// readSource parses one configured CSV input on the given side.
func readSource(src config.SourceConfig, origin ledger.Origin, logger *slog.Logger) ([]ledger.Record, error) {
	options := csvfile.Options{
		DateFormats: src.DateFormats,
		Columns:     src.Columns,
	}
	if src.Delimiter != "" {
		options.Delimiter = rune(src.Delimiter[0])
	}

	reader := csvfile.NewReader(options, logger)
	records, err := reader.ReadFile(src.Path, origin)
	if err != nil {
		return nil, fmt.Errorf("read %s source: %w", origin, err)
	}
	return records, nil
}
