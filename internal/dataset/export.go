package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"conversion-insights-go/internal/pipeline"
)

// Identifier and label columns framing the feature columns of an exported table.
const (
	ColEmail          = "email"
	ColAssessmentDate = "assessment_date"
	ColConverted      = "converted"
)

const sheetName = "dataset"

func header(t pipeline.Table) []string {
	h := make([]string, 0, t.Schema.Width()+3)
	h = append(h, ColEmail, ColAssessmentDate)
	h = append(h, t.Schema.Columns...)
	return append(h, ColConverted)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the table with a header row. The file is replaced atomically.
func WriteCSV(path string, t pipeline.Table) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(header(t)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		rec := make([]string, 0, t.Schema.Width()+3)
		for i, r := range t.Rows {
			rec = rec[:0]
			rec = append(rec, r.Email, r.AssessmentDate.UTC().Format(time.RFC3339Nano))
			for _, v := range r.Values {
				rec = append(rec, formatFloat(v))
			}
			rec = append(rec, strconv.Itoa(r.Converted))
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteXLSX writes the table to a single-sheet workbook.
func WriteXLSX(path string, t pipeline.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	h := header(t)
	row := make([]interface{}, len(h))
	for i, c := range h {
		row[i] = c
	}
	if err := sw.SetRow("A1", row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		row := make([]interface{}, 0, len(h))
		row = append(row, r.Email, r.AssessmentDate.UTC().Format(time.RFC3339Nano))
		for _, v := range r.Values {
			row = append(row, v)
		}
		row = append(row, r.Converted)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames it
// into place, so readers never see a partial file.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
