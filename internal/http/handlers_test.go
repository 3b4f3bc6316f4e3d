package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/metrics"
	"conversion-insights-go/internal/model"
	"conversion-insights-go/internal/processor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, origins ...string) *gin.Engine {
	t.Helper()
	schema := features.NewSchema(features.BaseColumns())
	w := make([]float64, schema.Width())
	scale := make([]float64, schema.Width())
	for i, c := range schema.Columns {
		scale[i] = 1
		if c == features.ColHasGoals {
			w[i] = 3
		}
	}
	art, err := model.NewArtifact(
		&model.LogisticRegression{Weights: w, Bias: -1},
		model.Scaler{Mean: make([]float64, schema.Width()), Scale: scale},
		schema, 120, model.Evaluation{Name: "Logistic Regression", Accuracy: 0.8, ROCAUC: 0.85, AUCDefined: true},
	)
	require.NoError(t, err)

	m := metrics.New()
	log := logger.Discard()
	p := processor.NewPredictor(art, features.NewBuilder(), log, processor.WithMetrics(m))
	return NewRouter(log, NewHandler(p, log), m, origins)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["model_id"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPredictEndpoint(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodPost, "/predict", `{"email":"a@x.com","goals":"rest","ageBracket":"30-40"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	pred := body["prediction"].(map[string]any)
	assert.Equal(t, true, pred["will_convert"])
	assert.Equal(t, "High", pred["risk_level"])
	assert.InDelta(t, 0.8808, pred["conversion_probability"].(float64), 1e-4)
	assert.InDelta(t, 0.8808, pred["confidence"].(float64), 1e-4)
	assert.Contains(t, pred, "recommendation")
}

func TestPredictRejectsBadRequests(t *testing.T) {
	r := newTestRouter(t)
	for name, body := range map[string]string{
		"empty body":   "",
		"empty object": "{}",
		"not json":     "{nope",
		"array":        `[{"goals":"x"}]`,
		"string":       `"hello"`,
		"null":         "null",
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/predict", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, decodeBody(t, rec)["success"])
		})
	}
}

func TestPredictBatchEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := do(r, http.MethodPost, "/predict/batch", `[42, {"email":"b@x.com"}, {"email":"c@x.com","goals":"yes"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	preds := body["predictions"].([]any)
	require.Len(t, preds, 2)
	assert.Equal(t, "b@x.com", preds[0].(map[string]any)["email"])
	assert.Equal(t, "Low", preds[0].(map[string]any)["risk_level"])
	assert.Equal(t, "c@x.com", preds[1].(map[string]any)["email"])

	rec = do(r, http.MethodPost, "/predict/batch", `{"email":"b@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelInfo(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/model/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, model.KindLogisticRegression, body["model_type"])
	assert.Equal(t, float64(28), body["num_features"])
	assert.Len(t, body["features"], 10)
	assert.Equal(t, "age_bracket_number", body["features"].([]any)[0])
	assert.Equal(t, float64(120), body["training_samples"])
	assert.InDelta(t, 0.85, body["metrics"].(map[string]any)["roc_auc"].(float64), 1e-12)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodPost, "/predict", `{"goals":"x"}`)
	rec := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `conversion_predictions_total{risk_level="High"} 1`)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, "https://app.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(newTestRouter(t, "*"), http.MethodGet, "/health", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "no Origin header, no CORS headers")
}
