package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/pipeline"
)

// Load reads an exported table back from .csv or .xlsx. The identifier columns
// are kept on the rows; every other column except the label is a feature, in
// file order. Empty cells read as 0.
func Load(path string) (pipeline.Table, error) {
	rows, err := readRows(path)
	if err != nil {
		return pipeline.Table{}, err
	}
	if len(rows) == 0 {
		return pipeline.Table{}, fmt.Errorf("no header")
	}

	header := rows[0]
	emailIdx, dateIdx, labelIdx := -1, -1, -1
	var featIdx []int
	var cols []string
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case ColEmail:
			emailIdx = i
		case ColAssessmentDate:
			dateIdx = i
		case ColConverted:
			labelIdx = i
		default:
			featIdx = append(featIdx, i)
			cols = append(cols, strings.TrimSpace(h))
		}
	}
	if labelIdx == -1 {
		return pipeline.Table{}, fmt.Errorf("missing %q column", ColConverted)
	}
	schema := features.NewSchema(cols)
	if err := schema.Validate(); err != nil {
		return pipeline.Table{}, fmt.Errorf("header: %w", err)
	}

	t := pipeline.Table{Schema: schema, Rows: make([]pipeline.Row, 0, len(rows)-1)}
	for n, r := range rows[1:] {
		line := n + 2
		row := pipeline.Row{Values: make([]float64, len(featIdx))}
		if emailIdx >= 0 && emailIdx < len(r) {
			row.Email = r[emailIdx]
		}
		if dateIdx >= 0 && dateIdx < len(r) {
			row.AssessmentDate, _ = time.Parse(time.RFC3339Nano, strings.TrimSpace(r[dateIdx]))
		}
		for j, idx := range featIdx {
			v, err := cellFloat(r, idx)
			if err != nil {
				return pipeline.Table{}, fmt.Errorf("line %d column %s: %w", line, cols[j], err)
			}
			row.Values[j] = v
		}
		label, err := cellFloat(r, labelIdx)
		if err != nil || (label != 0 && label != 1) {
			return pipeline.Table{}, fmt.Errorf("line %d: label must be 0 or 1", line)
		}
		row.Converted = int(label)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets")
		}
		rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		return rows, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		return rows, nil
	}
}

func cellFloat(r []string, idx int) (float64, error) {
	if idx >= len(r) {
		return 0, nil
	}
	s := strings.TrimSpace(r[idx])
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
