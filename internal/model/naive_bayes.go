package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GaussianNB models each feature as an independent normal per class.
type GaussianNB struct {
	Prior        [2]float64   `json:"prior"`
	Mean         [2][]float64 `json:"mean"`
	Var          [2][]float64 `json:"var"`
	VarSmoothing float64      `json:"var_smoothing"`
}

func NewGaussianNB() *GaussianNB {
	return &GaussianNB{VarSmoothing: 1e-9}
}

func (m *GaussianNB) Kind() string { return KindGaussianNB }
func (m *GaussianNB) Width() int  { return len(m.Mean[0]) }

func (m *GaussianNB) Fit(X [][]float64, y []int) error {
	n, width, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}

	// smoothing is relative to the largest feature variance, as in the usual formulation
	col := make([]float64, n)
	var maxVar float64
	for j := 0; j < width; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		_, std := stat.PopMeanStdDev(col, nil)
		maxVar = math.Max(maxVar, std*std)
	}
	eps := m.VarSmoothing * maxVar
	if eps == 0 {
		eps = m.VarSmoothing
	}

	for c := 0; c < 2; c++ {
		var rows [][]float64
		for i, v := range y {
			if v == c {
				rows = append(rows, X[i])
			}
		}
		m.Prior[c] = float64(len(rows)) / float64(n)
		m.Mean[c] = make([]float64, width)
		m.Var[c] = make([]float64, width)
		vals := make([]float64, len(rows))
		for j := 0; j < width; j++ {
			for i, r := range rows {
				vals[i] = r[j]
			}
			mean, std := stat.PopMeanStdDev(vals, nil)
			m.Mean[c][j] = mean
			m.Var[c][j] = std*std + eps
		}
	}
	return nil
}

func (m *GaussianNB) validate(width int) error {
	for c := 0; c < 2; c++ {
		if len(m.Mean[c]) != width || len(m.Var[c]) != width {
			return fmt.Errorf("class %d has %d means and %d variances, want %d", c, len(m.Mean[c]), len(m.Var[c]), width)
		}
		if !allFinite(m.Mean[c]) {
			return fmt.Errorf("class %d has non-finite means", c)
		}
		for j, v := range m.Var[c] {
			if !(v > 0) || math.IsInf(v, 0) {
				return fmt.Errorf("class %d variance %d is %v", c, j, v)
			}
		}
		if !(m.Prior[c] > 0 && m.Prior[c] < 1) {
			return fmt.Errorf("class %d prior %v outside (0,1)", c, m.Prior[c])
		}
	}
	return nil
}

func (m *GaussianNB) PredictProba(x []float64) float64 {
	var ll [2]float64
	for c := 0; c < 2; c++ {
		ll[c] = math.Log(m.Prior[c])
		for j, v := range x {
			d := v - m.Mean[c][j]
			ll[c] -= 0.5 * (math.Log(2*math.Pi*m.Var[c][j]) + d*d/m.Var[c][j])
		}
	}
	// normalize in log space
	lse := floats.LogSumExp(ll[:])
	return math.Exp(ll[1] - lse)
}
