package source

import (
	"context"
	"errors"
	"fmt"

	"conversion-insights-go/internal/config"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/types"
)

// Open builds the configured source. The returned func releases its resources.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Source, func(), error) {
	switch cfg.SourceKind {
	case config.SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres source")
		}
		pool, err := NewPool(ctx, cfg.DatabaseURL, cfg.SourceTimeout)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pool, log), pool.Close, nil
	case config.SourceHTTP:
		if cfg.SourceURL == "" {
			return nil, nil, errors.New("SOURCE_URL is required for the http source")
		}
		return NewHTTP(cfg.SourceURL, cfg.SourceTimeout, log), func() {}, nil
	case config.SourceFile:
		return NewFile(cfg.AssessmentsFile, cfg.AppointmentsFile), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
}

// ReadAll fetches both collections; either failing fails the read.
func ReadAll(ctx context.Context, src Source) ([]any, []types.Appointment, error) {
	assessments, err := src.Assessments(ctx)
	if err != nil {
		return nil, nil, err
	}
	appointments, err := src.Appointments(ctx)
	if err != nil {
		return nil, nil, err
	}
	return assessments, appointments, nil
}
