package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/metrics"
)

// NewRouter wires the prediction endpoints and their middleware.
func NewRouter(log *logger.Logger, h *Handler, m *metrics.Metrics, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery(), cors(origins))

	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)
	r.POST("/predict/batch", h.PredictBatch)
	r.GET("/model/info", h.ModelInfo)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return r
}

// requestLogger logs every request once it has been served.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithRequest(c.Request)
		c.Header("X-Request-ID", logger.RequestID(c.Request))
		c.Next()

		entry = entry.WithField("status", c.Writer.Status()).
			WithField("latency_ms", time.Since(start).Milliseconds())
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request")
		case c.Writer.Status() >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// cors answers preflights and tags responses for allowed origins. "*" allows any.
func cors(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		_, ok := allowed[origin]
		if !allowAll && !ok {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
