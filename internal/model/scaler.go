package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each feature to zero mean and unit variance using the
// population statistics of the data it was fitted on.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler learns per-column statistics. Constant columns get a scale of 1.
func FitScaler(X [][]float64) (Scaler, error) {
	if len(X) == 0 {
		return Scaler{}, fmt.Errorf("fit scaler: no rows")
	}
	width := len(X[0])
	s := Scaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	col := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i, row := range X {
			if len(row) != width {
				return Scaler{}, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), width)
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}
	return s, nil
}

func (s Scaler) Width() int { return len(s.Mean) }

func (s Scaler) validate(width int) error {
	if len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler has %d means and %d scales, want %d", len(s.Mean), len(s.Scale), width)
	}
	if !allFinite(s.Mean) {
		return fmt.Errorf("scaler has non-finite means")
	}
	for j, v := range s.Scale {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("scale %d is %v", j, v)
		}
	}
	return nil
}

// Transform returns a standardized copy of x.
func (s Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

func (s Scaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
