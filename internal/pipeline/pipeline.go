// Package pipeline assembles the labeled training table out of raw assessment
// and appointment records.
package pipeline

import (
	"fmt"
	"time"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/types"
)

// Row is one surviving assessment. Values are laid out in the table schema.
type Row struct {
	Email          string
	AssessmentDate time.Time
	Values         []float64
	Converted      int
}

// Table is the labeled feature table; its schema becomes the training contract.
type Table struct {
	Schema features.Schema
	Rows   []Row
}

// Labels returns the converted column.
func (t Table) Labels() []int {
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Converted
	}
	return out
}

// Matrix returns the feature values row by row.
func (t Table) Matrix() [][]float64 {
	out := make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values
	}
	return out
}

// Report counts what happened to the input records.
type Report struct {
	Total       int
	Kept        int
	Skipped     int
	Conversions int
}

type Assembler struct {
	builder features.Builder
	labeler Labeler
	now     func() time.Time
	log     *logger.Logger
}

func NewAssembler(b features.Builder, l Labeler, log *logger.Logger) *Assembler {
	return &Assembler{
		builder: b,
		labeler: l,
		now:     time.Now,
		log:     log.Component("pipeline.assembler"),
	}
}

// WithClock replaces the clock used for assessments without createdAt.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

type pendingRow struct {
	row   Row
	feats features.Features
}

// Assemble builds one row per assessment, in input order. A record that cannot be
// read is logged and skipped; it never aborts the batch.
func (a *Assembler) Assemble(assessments []any, appointments []types.Appointment) (Table, Report) {
	idx := indexAppointments(appointments)
	rep := Report{Total: len(assessments)}

	pending := make([]pendingRow, 0, len(assessments))
	for i, raw := range assessments {
		p, err := a.processRecord(raw, idx)
		if err != nil {
			rep.Skipped++
			a.log.WithError(err).WithField("index", i).Warn("skipping assessment")
			continue
		}
		pending = append(pending, p)
	}

	focus := make([]string, len(pending))
	arch := make([]string, len(pending))
	for i, p := range pending {
		focus[i] = p.feats.FocusChakra
		arch[i] = p.feats.Archetype
	}
	cols := features.BaseColumns()
	cols = append(cols, features.DummyColumns(features.FocusChakraPrefix, focus)...)
	cols = append(cols, features.DummyColumns(features.ArchetypePrefix, arch)...)
	schema := features.NewSchema(cols)

	table := Table{Schema: schema, Rows: make([]Row, 0, len(pending))}
	for _, p := range pending {
		p.row.Values = p.feats.Project(schema)
		table.Rows = append(table.Rows, p.row)
		rep.Conversions += p.row.Converted
	}
	rep.Kept = len(table.Rows)

	a.log.WithFields(map[string]interface{}{
		"total":       rep.Total,
		"kept":        rep.Kept,
		"skipped":     rep.Skipped,
		"conversions": rep.Conversions,
		"columns":     schema.Width(),
	}).Info("dataset assembled")
	return table, rep
}

func (a *Assembler) processRecord(raw any, idx appointmentIndex) (p pendingRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", types.ErrMalformedRecord, r)
		}
	}()

	rec, err := types.AsRecord(raw)
	if err != nil {
		return p, fmt.Errorf("%w: %v", types.ErrMalformedRecord, err)
	}
	asmt, err := types.NewAssessment(rec)
	if err != nil {
		return p, fmt.Errorf("%w: %v", types.ErrMalformedRecord, err)
	}
	at := asmt.CreatedAt
	if !asmt.HasCreatedAt {
		at = a.now()
	}

	p.feats = a.builder.FromAssessment(asmt)
	p.row = Row{
		Email:          asmt.Email,
		AssessmentDate: at,
		Converted:      a.labeler.Label(asmt.Email, at, idx.forEmail(asmt.Email)),
	}
	return p, nil
}
