package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/model"
	"conversion-insights-go/internal/processor"
	"conversion-insights-go/internal/types"
)

const maxBodyBytes = 4 << 20

// Handler serves predictions from one loaded artifact.
type Handler struct {
	predictor *processor.Predictor
	log       *logger.Logger
}

func NewHandler(p *processor.Predictor, log *logger.Logger) *Handler {
	return &Handler{predictor: p, log: log.Component("http.handler")}
}

// Health handles GET /health. The process never listens without a model.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Prediction service is running",
		"model_id": h.predictor.Artifact().ID,
	})
}

// Predict handles POST /predict.
func (h *Handler) Predict(c *gin.Context) {
	body, ok := h.decode(c)
	if !ok {
		return
	}
	if rec, isObj := body.(map[string]any); isObj && len(rec) == 0 {
		fail(c, http.StatusBadRequest, "No assessment data provided")
		return
	}
	pred, err := h.predictor.Predict(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, "predict", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": pred})
}

// PredictBatch handles POST /predict/batch.
func (h *Handler) PredictBatch(c *gin.Context) {
	body, ok := h.decode(c)
	if !ok {
		return
	}
	preds, err := h.predictor.PredictBatch(c.Request.Context(), body)
	if err != nil {
		if errors.Is(err, types.ErrInvalidInput) {
			fail(c, http.StatusBadRequest, "Request must be a JSON array of assessments")
			return
		}
		h.respondError(c, "predict_batch", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(preds), "predictions": preds})
}

type modelInfo struct {
	ModelID         string           `json:"model_id"`
	ModelType       string           `json:"model_type"`
	NumFeatures     int              `json:"num_features"`
	Features        []string         `json:"features"`
	TrainingSamples int              `json:"training_samples"`
	CreatedAt       time.Time        `json:"created_at"`
	Metrics         model.Evaluation `json:"metrics"`
}

// ModelInfo handles GET /model/info.
func (h *Handler) ModelInfo(c *gin.Context) {
	a := h.predictor.Artifact()
	cols := a.Schema.Columns
	if len(cols) > 10 {
		cols = cols[:10]
	}
	c.JSON(http.StatusOK, modelInfo{
		ModelID:         a.ID,
		ModelType:       a.Classifier.Kind(),
		NumFeatures:     a.Schema.Width(),
		Features:        cols,
		TrainingSamples: a.TrainingSamples,
		CreatedAt:       a.CreatedAt,
		Metrics:         a.Evaluation,
	})
}

// decode reads the body as arbitrary JSON and answers 400 itself on failure.
func (h *Handler) decode(c *gin.Context) (any, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.log.WithError(err).Warn("read body failed")
		fail(c, http.StatusBadRequest, "could not read request body")
		return nil, false
	}
	if len(data) == 0 {
		fail(c, http.StatusBadRequest, "No assessment data provided")
		return nil, false
	}
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		fail(c, http.StatusBadRequest, "request body is not valid JSON")
		return nil, false
	}
	return body, true
}

func (h *Handler) respondError(c *gin.Context, op string, err error) {
	if errors.Is(err, types.ErrInvalidInput) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	h.log.WithError(err).WithField("op", op).Error("prediction failed")
	fail(c, http.StatusInternalServerError, "prediction failed")
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
