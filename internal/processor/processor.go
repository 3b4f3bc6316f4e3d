// Package processor scores assessments against a loaded model artifact.
package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"conversion-insights-go/internal/actionable"
	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/metrics"
	"conversion-insights-go/internal/model"
	"conversion-insights-go/internal/types"
)

// Prediction is returned by /predict and, per item, by /predict/batch.
type Prediction struct {
	WillConvert           bool                  `json:"will_convert"`
	ConversionProbability float64               `json:"conversion_probability"`
	Confidence            float64               `json:"confidence"`
	RiskLevel             string                `json:"risk_level"`
	Email                 string                `json:"email,omitempty"`
	Recommendation        actionable.ActionCard `json:"recommendation"`
}

// Cache stores encoded predictions. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Predictor holds the artifact read-only; one value serves all requests.
type Predictor struct {
	artifact *model.Artifact
	builder  features.Builder
	cache    Cache
	metrics  *metrics.Metrics
	log      *logger.Logger
}

type Option func(*Predictor)

func WithCache(c Cache) Option { return func(p *Predictor) { p.cache = c } }

func WithMetrics(m *metrics.Metrics) Option { return func(p *Predictor) { p.metrics = m } }

func NewPredictor(a *model.Artifact, b features.Builder, log *logger.Logger, opts ...Option) *Predictor {
	p := &Predictor{artifact: a, builder: b, log: log.Component("processor")}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Predictor) Artifact() *model.Artifact { return p.artifact }

// RiskLevel buckets a conversion probability at 0.7, 0.5 and 0.3.
func RiskLevel(prob float64) string {
	switch {
	case prob >= 0.7:
		return types.RiskHigh
	case prob >= 0.5:
		return types.RiskMediumHigh
	case prob >= 0.3:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// Predict scores one assessment. Anything that is not a JSON object is
// ErrInvalidInput; missing or malformed fields fall back to their defaults.
func (p *Predictor) Predict(ctx context.Context, raw any) (Prediction, error) {
	start := time.Now()
	rec, err := types.AsRecord(raw)
	if err != nil {
		return Prediction{}, err
	}

	key := p.cacheKey(rec)
	if pred, ok := p.cached(ctx, key); ok {
		p.metrics.ObservePrediction(pred.RiskLevel, time.Since(start))
		return pred, nil
	}

	vec, err := p.builder.Vector(rec, p.artifact.Schema)
	if err != nil {
		return Prediction{}, err
	}
	prob, err := p.artifact.PredictProba(vec)
	if err != nil {
		return Prediction{}, err
	}

	pred := Prediction{
		WillConvert:           model.Decide(prob),
		ConversionProbability: prob,
		Confidence:            max(prob, 1-prob),
		RiskLevel:             RiskLevel(prob),
	}
	pred.Recommendation = actionable.Generate(pred.RiskLevel, prob)

	p.store(ctx, key, pred)
	p.metrics.ObservePrediction(pred.RiskLevel, time.Since(start))
	return pred, nil
}

func (p *Predictor) cacheKey(rec types.Record) string {
	if p.cache == nil {
		return ""
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", p.artifact.ID, hex.EncodeToString(sum[:]))
}

// cached never fails the request; a broken cache is a miss.
func (p *Predictor) cached(ctx context.Context, key string) (Prediction, bool) {
	if key == "" {
		return Prediction{}, false
	}
	data, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.WithError(err).Warn("prediction cache read failed")
		p.metrics.CacheLookup("error")
		return Prediction{}, false
	}
	if !ok {
		p.metrics.CacheLookup("miss")
		return Prediction{}, false
	}
	var pred Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		p.log.WithError(err).Warn("prediction cache entry unreadable")
		p.metrics.CacheLookup("error")
		return Prediction{}, false
	}
	p.metrics.CacheLookup("hit")
	return pred, true
}

func (p *Predictor) store(ctx context.Context, key string, pred Prediction) {
	if key == "" {
		return
	}
	data, err := json.Marshal(pred)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data); err != nil {
		p.log.WithError(err).Warn("prediction cache write failed")
	}
}
