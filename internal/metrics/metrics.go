// Package metrics exposes the prediction service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	skipped     prometheus.Counter
	cache       *prometheus.CounterVec
	latency     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Name:      "predictions_total",
			Help:      "Predictions served, by risk level.",
		}, []string{"risk_level"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "conversion",
			Name:      "batch_items_skipped_total",
			Help:      "Batch items that could not be scored.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Name:      "prediction_cache_total",
			Help:      "Prediction cache lookups, by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "conversion",
			Name:      "prediction_duration_seconds",
			Help:      "Time to score one assessment.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.predictions, m.skipped, m.cache, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObservePrediction(level string, d time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(level).Inc()
	m.latency.Observe(d.Seconds())
}

func (m *Metrics) BatchItemSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

// CacheLookup records "hit", "miss" or "error".
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
