package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"conversion-insights-go/internal/types"
)

// Classifier is a binary model over standardized feature vectors.
type Classifier interface {
	Kind() string
	Width() int
	Fit(X [][]float64, y []int) error
	// PredictProba returns the probability of the positive class.
	PredictProba(x []float64) float64
	// validate reports parameters that cannot score a vector of width inputs.
	validate(width int) error
}

const (
	KindLogisticRegression = "logistic_regression"
	KindGaussianNB         = "gaussian_nb"
)

// LogisticRegression is an L2-regularized logistic model fitted by batch
// gradient descent, optionally with balanced class weights.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	C            float64 `json:"c"`
	MaxIter      int     `json:"max_iter"`
	LearningRate float64 `json:"learning_rate"`
	Tolerance    float64 `json:"tolerance"`
	Balanced     bool    `json:"balanced"`
}

// NewLogisticRegression mirrors the usual defaults: C=1, 1000 iterations.
func NewLogisticRegression(balanced bool) *LogisticRegression {
	return &LogisticRegression{
		C:            1.0,
		MaxIter:      1000,
		LearningRate: 0.1,
		Tolerance:    1e-6,
		Balanced:     balanced,
	}
}

func (m *LogisticRegression) Kind() string { return KindLogisticRegression }
func (m *LogisticRegression) Width() int  { return len(m.Weights) }

func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	n, width, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}
	sw := sampleWeights(y, m.Balanced)

	m.Weights = make([]float64, width)
	m.Bias = 0
	grad := make([]float64, width)
	lambda := 1 / (m.C * float64(n))

	for iter := 0; iter < m.MaxIter; iter++ {
		for j := range grad {
			grad[j] = lambda * m.Weights[j]
		}
		var gradBias float64
		for i, x := range X {
			diff := sw[i] * (sigmoid(floats.Dot(m.Weights, x)+m.Bias) - float64(y[i])) / float64(n)
			floats.AddScaled(grad, diff, x)
			gradBias += diff
		}
		floats.AddScaled(m.Weights, -m.LearningRate, grad)
		m.Bias -= m.LearningRate * gradBias

		if math.Sqrt(floats.Dot(grad, grad)+gradBias*gradBias) < m.Tolerance {
			break
		}
	}
	return nil
}

func (m *LogisticRegression) PredictProba(x []float64) float64 {
	return sigmoid(floats.Dot(m.Weights, x) + m.Bias)
}

func (m *LogisticRegression) validate(width int) error {
	if len(m.Weights) != width {
		return fmt.Errorf("%d weights, want %d", len(m.Weights), width)
	}
	if !allFinite(m.Weights) || !allFinite([]float64{m.Bias}) {
		return fmt.Errorf("non-finite weights")
	}
	return nil
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// sampleWeights returns n/(2*n_class) per sample when balanced, 1 otherwise.
func sampleWeights(y []int, balanced bool) []float64 {
	w := make([]float64, len(y))
	var counts [2]int
	for _, v := range y {
		counts[v]++
	}
	for i, v := range y {
		if balanced {
			w[i] = float64(len(y)) / (2 * float64(counts[v]))
		} else {
			w[i] = 1
		}
	}
	return w
}

func checkTrainingSet(X [][]float64, y []int) (n, width int, err error) {
	if len(X) == 0 {
		return 0, 0, fmt.Errorf("fit: %w", types.ErrEmptyDataset)
	}
	if len(X) != len(y) {
		return 0, 0, fmt.Errorf("fit: %d rows but %d labels", len(X), len(y))
	}
	width = len(X[0])
	var seen [2]bool
	for i, row := range X {
		if len(row) != width {
			return 0, 0, fmt.Errorf("fit: row %d has %d columns, want %d", i, len(row), width)
		}
		if y[i] != 0 && y[i] != 1 {
			return 0, 0, fmt.Errorf("fit: label %d at row %d", y[i], i)
		}
		seen[y[i]] = true
	}
	if !seen[0] || !seen[1] {
		return 0, 0, fmt.Errorf("fit: %w", types.ErrSingleClass)
	}
	return len(X), width, nil
}
