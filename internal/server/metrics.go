package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
)

const metricsNamespace = "sortit"

// Metrics holds the Prometheus collectors for one server. Each instance has
// its own registry so tests and multiple servers do not collide.
type Metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	sourceErrors    *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "classifications_total",
			Help:      "Classifications by resulting category and deciding step.",
		}, []string{"category", "step"}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "label_source_errors_total",
			Help:      "Failed label source calls.",
		}, []string{"source"}),
		sourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "label_source_duration_seconds",
			Help:      "Latency of label source calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResult counts a classification result.
func (m *Metrics) ObserveResult(result *model.ClassificationResult) {
	if result == nil {
		return
	}
	m.classifications.WithLabelValues(string(result.Category), result.Step).Inc()
}

// InstrumentSource wraps src so every call is timed and failures counted.
func (m *Metrics) InstrumentSource(src labels.Source) labels.Source {
	return &instrumentedSource{inner: src, metrics: m}
}

type instrumentedSource struct {
	inner   labels.Source
	metrics *Metrics
}

func (s *instrumentedSource) Labels(ctx context.Context, img labels.Image) (model.LabelSet, error) {
	start := time.Now()
	ls, err := s.inner.Labels(ctx, img)
	name := s.inner.Name()
	s.metrics.sourceDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.sourceErrors.WithLabelValues(name).Inc()
	}
	return ls, err
}

func (s *instrumentedSource) Name() string {
	return s.inner.Name()
}
