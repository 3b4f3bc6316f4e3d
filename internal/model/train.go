package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/pipeline"
	"conversion-insights-go/internal/types"
)

// Candidate is one classifier the trainer tries.
type Candidate struct {
	Name string
	New  func() Classifier
}

// DefaultCandidates are compared on every training run.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "Logistic Regression", New: func() Classifier { return NewLogisticRegression(true) }},
		{Name: "Gaussian Naive Bayes", New: func() Classifier { return NewGaussianNB() }},
	}
}

type TrainOptions struct {
	TestFraction float64
	Seed         uint64
	Candidates   []Candidate
}

// Evaluation is a candidate's score on the held-out split.
type Evaluation struct {
	Name       string  `json:"name"`
	Accuracy   float64 `json:"accuracy"`
	ROCAUC     float64 `json:"roc_auc"`
	AUCDefined bool    `json:"auc_defined"`
}

// Train splits the table, fits a scaler on the training part, fits every candidate
// and keeps the one with the best held-out ROC-AUC (accuracy when the test split
// has a single class). The result is a complete artifact for the table's schema.
func Train(t pipeline.Table, opts TrainOptions, log *logger.Logger) (*Artifact, []Evaluation, error) {
	log = log.Component("model.train")
	if len(opts.Candidates) == 0 {
		opts.Candidates = DefaultCandidates()
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	if len(t.Rows) < 2 {
		return nil, nil, fmt.Errorf("train: %w", types.ErrEmptyDataset)
	}

	y := t.Labels()
	var counts [2]int
	for _, v := range y {
		counts[v]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return nil, nil, fmt.Errorf("train: %w", types.ErrSingleClass)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	stratify := counts[0] >= 2 && counts[1] >= 2
	trainIdx, testIdx := split(y, opts.TestFraction, stratify, rng)
	log.WithFields(map[string]interface{}{
		"train_rows": len(trainIdx),
		"test_rows":  len(testIdx),
		"stratified": stratify,
	}).Info("split dataset")

	X := t.Matrix()
	Xtrain, ytrain := pick(X, y, trainIdx)
	Xtest, ytest := pick(X, y, testIdx)

	scaler, err := FitScaler(Xtrain)
	if err != nil {
		return nil, nil, fmt.Errorf("train: %w", err)
	}
	Xtrain = scaler.TransformAll(Xtrain)
	Xtest = scaler.TransformAll(Xtest)

	var (
		best     Classifier
		bestEval Evaluation
		evals    []Evaluation
	)
	for _, c := range opts.Candidates {
		clf := c.New()
		if err := clf.Fit(Xtrain, ytrain); err != nil {
			log.WithError(err).WithField("model", c.Name).Warn("candidate skipped")
			continue
		}
		proba := make([]float64, len(Xtest))
		for i, x := range Xtest {
			proba[i] = clf.PredictProba(x)
		}
		ev := Evaluation{Name: c.Name, Accuracy: Accuracy(ytest, proba)}
		ev.ROCAUC, ev.AUCDefined = ROCAUC(ytest, proba)
		evals = append(evals, ev)
		log.WithFields(map[string]interface{}{
			"model":    c.Name,
			"accuracy": ev.Accuracy,
			"roc_auc":  ev.ROCAUC,
		}).Info("candidate evaluated")

		if best == nil || better(ev, bestEval) {
			best, bestEval = clf, ev
		}
	}
	if best == nil {
		return nil, evals, errors.New("train: no candidate could be fitted")
	}
	log.WithField("model", bestEval.Name).Info("best model selected")

	art, err := NewArtifact(best, scaler, t.Schema, len(trainIdx), bestEval)
	if err != nil {
		return nil, evals, err
	}
	return art, evals, nil
}

func better(a, b Evaluation) bool {
	if a.AUCDefined && b.AUCDefined {
		return a.ROCAUC > b.ROCAUC
	}
	if a.AUCDefined != b.AUCDefined {
		return a.AUCDefined
	}
	return a.Accuracy > b.Accuracy
}

// split shuffles row indices into train and test parts. Stratified splits hold out
// the same fraction of each class; each part keeps at least one row.
func split(y []int, frac float64, stratify bool, rng *rand.Rand) (train, test []int) {
	groups := [][]int{make([]int, 0, len(y))}
	if stratify {
		groups = [][]int{{}, {}}
	}
	for i, v := range y {
		g := 0
		if stratify {
			g = v
		}
		groups[g] = append(groups[g], i)
	}
	for _, g := range groups {
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		nTest := int(math.Ceil(frac * float64(len(g))))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(g)-1 {
			nTest = len(g) - 1
		}
		test = append(test, g[:nTest]...)
		train = append(train, g[nTest:]...)
	}
	return train, test
}

func pick(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, k := range idx {
		xs[i], ys[i] = X[k], y[k]
	}
	return xs, ys
}
