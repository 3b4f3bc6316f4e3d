package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/types"
)

const (
	DefaultAssessmentsQuery  = `SELECT doc FROM assessments ORDER BY id`
	DefaultAppointmentsQuery = `SELECT doc FROM appointments ORDER BY id`
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads documents stored as jsonb, one per row.
type Postgres struct {
	db                querier
	assessmentsQuery  string
	appointmentsQuery string
	maxElapsed        time.Duration
	log               *logger.Logger
}

// NewPool opens a small read-only pool; extraction issues two queries.
func NewPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute
	if connectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = connectTimeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	return pool, nil
}

func NewPostgres(db querier, log *logger.Logger) *Postgres {
	return &Postgres{
		db:                db,
		assessmentsQuery:  DefaultAssessmentsQuery,
		appointmentsQuery: DefaultAppointmentsQuery,
		maxElapsed:        15 * time.Second,
		log:               log.Component("source.postgres"),
	}
}

// WithQueries overrides the statements; each must select a single json or jsonb column.
func (p *Postgres) WithQueries(assessments, appointments string) *Postgres {
	if assessments != "" {
		p.assessmentsQuery = assessments
	}
	if appointments != "" {
		p.appointmentsQuery = appointments
	}
	return p
}

func (p *Postgres) Assessments(ctx context.Context) ([]any, error) {
	docs, err := p.documents(ctx, p.assessmentsQuery)
	if err != nil {
		return nil, unavailable("assessments", err)
	}
	return docs, nil
}

func (p *Postgres) Appointments(ctx context.Context) ([]types.Appointment, error) {
	docs, err := p.documents(ctx, p.appointmentsQuery)
	if err != nil {
		return nil, unavailable("appointments", err)
	}
	return Appointments(docs), nil
}

func (p *Postgres) documents(ctx context.Context, query string) ([]any, error) {
	var docs []any
	op := func() error {
		docs = docs[:0]
		rows, err := p.db.Query(ctx, query)
		if err != nil {
			p.log.WithError(err).Warn("query failed")
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return backoff.Permanent(fmt.Errorf("scan: %w", err))
			}
			var doc any
			if err := json.Unmarshal(raw, &doc); err != nil {
				// keep the row so the assembler counts it as malformed
				doc = string(raw)
			}
			docs = append(docs, doc)
		}
		return rows.Err()
	}
	if err := backoff.Retry(op, newBackOff(ctx, p.maxElapsed)); err != nil {
		return nil, err
	}
	return docs, nil
}
