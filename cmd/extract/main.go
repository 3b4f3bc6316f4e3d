// Command extract reads assessments and appointments from the configured source,
// labels each assessment and writes the training table.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"conversion-insights-go/internal/config"
	"conversion-insights-go/internal/dataset"
	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/pipeline"
	"conversion-insights-go/internal/source"
	"conversion-insights-go/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}
	log := logger.NewWithOptions(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Service:     "conversion-extract",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("extraction failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.WithField("source", cfg.SourceKind).Info("reading records")
	src, closeSrc, err := source.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSrc()
	return extract(ctx, src, cfg, log)
}

// extract writes nothing unless both collections were read and at least one
// row survived assembly.
func extract(ctx context.Context, src source.Source, cfg *config.Config, log *logger.Logger) error {
	assessments, appointments, err := source.ReadAll(ctx, src)
	if err != nil {
		return err
	}
	log.WithField("assessments", len(assessments)).
		WithField("appointments", len(appointments)).
		Info("records fetched")

	asm := pipeline.NewAssembler(features.NewBuilder(), pipeline.NewLabeler(cfg.ConversionWindow), log)
	table, rep := asm.Assemble(assessments, appointments)
	if len(table.Rows) == 0 {
		return fmt.Errorf("%w: no assessments survived assembly, nothing written", types.ErrEmptyDataset)
	}

	s := dataset.Summarize(table)
	log.WithField("rows", s.TotalRows).
		WithField("skipped", rep.Skipped).
		WithField("conversions", s.Conversions).
		WithField("conversion_rate", s.ConversionRate).
		Info("dataset summary")

	if err := dataset.WriteCSV(cfg.DatasetPath, table); err != nil {
		return err
	}
	log.WithField("path", cfg.DatasetPath).Info("dataset written")

	if cfg.DatasetXLSXPath != "" {
		if err := dataset.WriteXLSX(cfg.DatasetXLSXPath, table); err != nil {
			return err
		}
		log.WithField("path", cfg.DatasetXLSXPath).Info("spreadsheet written")
	}
	return nil
}
