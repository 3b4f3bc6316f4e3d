package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/types"
)

// Artifact bundles a fitted classifier, its scaler and the feature schema they
// were trained on. It is written and read as one file and never mutated after
// load, so a single value is shared by all requests.
type Artifact struct {
	ID              string
	CreatedAt       time.Time
	Classifier      Classifier
	Scaler          Scaler
	Schema          features.Schema
	TrainingSamples int
	Evaluation      Evaluation
}

// artifactFile is the on-disk layout.
type artifactFile struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	ModelKind       string           `json:"model_kind"`
	Model           json.RawMessage  `json:"model"`
	Scaler          *Scaler          `json:"scaler"`
	Schema          *features.Schema `json:"schema"`
	TrainingSamples int              `json:"training_samples"`
	Evaluation      Evaluation       `json:"evaluation"`
}

// NewArtifact checks that the three parts agree on width and stamps a new id.
func NewArtifact(clf Classifier, s Scaler, schema features.Schema, samples int, ev Evaluation) (*Artifact, error) {
	a := &Artifact{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Classifier:      clf,
		Scaler:          s,
		Schema:          features.NewSchema(schema.Columns),
		TrainingSamples: samples,
		Evaluation:      ev,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate reports ErrArtifactMismatch when a part is missing, the widths disagree
// or a parameter could not score a vector.
func (a *Artifact) Validate() error {
	if a.Classifier == nil {
		return fmt.Errorf("%w: no classifier", types.ErrArtifactMismatch)
	}
	if err := a.Schema.Validate(); err != nil {
		return err
	}
	w := a.Schema.Width()
	if err := a.Scaler.validate(w); err != nil {
		return fmt.Errorf("%w: %v", types.ErrArtifactMismatch, err)
	}
	if err := a.Classifier.validate(w); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrArtifactMismatch, a.Classifier.Kind(), err)
	}
	return nil
}

// PredictProba scales a schema-ordered vector and scores it.
func (a *Artifact) PredictProba(x []float64) (float64, error) {
	if len(x) != a.Schema.Width() {
		return 0, fmt.Errorf("%w: vector has %d values, schema has %d", types.ErrArtifactMismatch, len(x), a.Schema.Width())
	}
	return a.Classifier.PredictProba(a.Scaler.Transform(x)), nil
}

// Save writes the artifact through a temp file and renames it into place.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	params, err := json.Marshal(a.Classifier)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	data, err := json.MarshalIndent(artifactFile{
		ID:              a.ID,
		CreatedAt:       a.CreatedAt,
		ModelKind:       a.Classifier.Kind(),
		Model:           params,
		Scaler:          &a.Scaler,
		Schema:          &a.Schema,
		TrainingSamples: a.TrainingSamples,
		Evaluation:      a.Evaluation,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Load reads an artifact. Any read, decode or consistency failure is an
// ErrArtifactMismatch; a process must not serve without a complete artifact.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", types.ErrArtifactMismatch, path, err)
	}
	var f artifactFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", types.ErrArtifactMismatch, path, err)
	}
	if f.Scaler == nil {
		return nil, fmt.Errorf("%w: no scaler", types.ErrArtifactMismatch)
	}
	if f.Schema == nil {
		return nil, fmt.Errorf("%w: no feature columns", types.ErrArtifactMismatch)
	}
	if len(f.Model) == 0 || string(f.Model) == "null" {
		return nil, fmt.Errorf("%w: no classifier", types.ErrArtifactMismatch)
	}

	clf, err := decodeClassifier(f.ModelKind, f.Model)
	if err != nil {
		return nil, err
	}
	a := &Artifact{
		ID:              f.ID,
		CreatedAt:       f.CreatedAt,
		Classifier:      clf,
		Scaler:          *f.Scaler,
		Schema:          *f.Schema,
		TrainingSamples: f.TrainingSamples,
		Evaluation:      f.Evaluation,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

var errUnknownKind = errors.New("unknown model kind")

func decodeClassifier(kind string, raw json.RawMessage) (Classifier, error) {
	var clf Classifier
	switch kind {
	case KindLogisticRegression:
		clf = &LogisticRegression{}
	case KindGaussianNB:
		clf = &GaussianNB{}
	default:
		return nil, fmt.Errorf("%w: %v %q", types.ErrArtifactMismatch, errUnknownKind, kind)
	}
	if err := json.Unmarshal(raw, clf); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", types.ErrArtifactMismatch, err)
	}
	return clf, nil
}
