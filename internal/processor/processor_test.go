package processor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/metrics"
	"conversion-insights-go/internal/model"
	"conversion-insights-go/internal/types"
)

// goalsArtifact scores sigmoid(1) with goals and sigmoid(-1) without.
func goalsArtifact(t *testing.T) *model.Artifact {
	t.Helper()
	cols := features.BaseColumns()
	cols = append(cols, features.DummyColumns(features.FocusChakraPrefix, []string{"heartChakra", "rootChakra"})...)
	schema := features.NewSchema(cols)

	w := make([]float64, schema.Width())
	scale := make([]float64, schema.Width())
	for i, c := range schema.Columns {
		scale[i] = 1
		if c == features.ColHasGoals {
			w[i] = 2
		}
	}
	clf := &model.LogisticRegression{Weights: w, Bias: -1}
	a, err := model.NewArtifact(clf, model.Scaler{Mean: make([]float64, schema.Width()), Scale: scale}, schema, 10, model.Evaluation{})
	require.NoError(t, err)
	return a
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	err  error
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = value
	return nil
}

func TestRiskLevel(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{1, types.RiskHigh},
		{0.7, types.RiskHigh},
		{0.6999, types.RiskMediumHigh},
		{0.5, types.RiskMediumHigh},
		{0.4999, types.RiskMedium},
		{0.3, types.RiskMedium},
		{0.2999, types.RiskLow},
		{0, types.RiskLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RiskLevel(tc.p), "p=%v", tc.p)
	}
}

func TestPredict(t *testing.T) {
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard())

	pred, err := p.Predict(context.Background(), map[string]any{"goals": "sleep better", "focusChakra": "rootChakra"})
	require.NoError(t, err)
	assert.True(t, pred.WillConvert)
	assert.InDelta(t, sigmoid(1), pred.ConversionProbability, 1e-12)
	assert.InDelta(t, sigmoid(1), pred.Confidence, 1e-12)
	assert.Equal(t, types.RiskHigh, pred.RiskLevel)
	assert.NotEmpty(t, pred.Recommendation.Action)
	assert.Empty(t, pred.Email)

	pred, err = p.Predict(context.Background(), map[string]any{"focusChakra": "neverSeen"})
	require.NoError(t, err)
	assert.False(t, pred.WillConvert)
	assert.InDelta(t, sigmoid(-1), pred.ConversionProbability, 1e-12)
	assert.InDelta(t, 1-sigmoid(-1), pred.Confidence, 1e-12)
	assert.Equal(t, types.RiskLow, pred.RiskLevel)
}

func TestPredictRejectsNonObject(t *testing.T) {
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard())
	for _, raw := range []any{nil, "x", 3.0, []any{map[string]any{}}} {
		_, err := p.Predict(context.Background(), raw)
		assert.ErrorIs(t, err, types.ErrInvalidInput, "%v", raw)
	}
}

func TestPredictBatchIsolatesBadItems(t *testing.T) {
	m := metrics.New()
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard(), WithMetrics(m))

	out, err := p.PredictBatch(context.Background(), []any{
		"not an assessment",
		map[string]any{"email": "a@x.com", "goals": "yes"},
		map[string]any{"goals": ""},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a@x.com", out[0].Email)
	assert.Equal(t, types.RiskHigh, out[0].RiskLevel)
	assert.Equal(t, types.UnknownCategory, out[1].Email)
	assert.Equal(t, types.RiskLow, out[1].RiskLevel)
}

func TestPredictBatchRequiresList(t *testing.T) {
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard())
	_, err := p.PredictBatch(context.Background(), map[string]any{"email": "a@x.com"})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	out, err := p.PredictBatch(context.Background(), []any{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPredictUsesCache(t *testing.T) {
	c := &memCache{}
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard(), WithCache(c))
	rec := map[string]any{"goals": "yes"}

	first, err := p.Predict(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, c.data, 1)

	second, err := p.Predict(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.gets)
	assert.Len(t, c.data, 1)
}

func TestPredictIgnoresCacheFailures(t *testing.T) {
	c := &memCache{err: errors.New("connection refused")}
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard(), WithCache(c))

	pred, err := p.Predict(context.Background(), map[string]any{"goals": "yes"})
	require.NoError(t, err)
	assert.Equal(t, types.RiskHigh, pred.RiskLevel)
}

func TestPredictorIsSafeForConcurrentUse(t *testing.T) {
	p := NewPredictor(goalsArtifact(t), features.NewBuilder(), logger.Discard(), WithCache(&memCache{}))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pred, err := p.Predict(context.Background(), map[string]any{"goals": "yes"})
			assert.NoError(t, err)
			assert.Equal(t, types.RiskHigh, pred.RiskLevel)
		}()
	}
	wg.Wait()
}
