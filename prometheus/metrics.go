// Package prometheus exposes seoentity metrics through Prometheus.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seoentity/seoentity"
)

// Namespace prefixes every metric name.
const Namespace = "seoentity"

// StatusOK is the status label of a call that returned no error.
const StatusOK = "ok"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	AnalyzerRequests *prometheus.CounterVec
	AnalyzerDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AnalyzerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "analyzer_requests_total",
				Help:      "Total number of analyzer calls by method and status",
			},
			[]string{"method", "status"},
		),
		AnalyzerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "analyzer_duration_seconds",
				Help:      "Duration of analyzer calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Registry returns the registry backing the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Ensure InstrumentedAnalyzer implements seoentity.Analyzer.
var _ seoentity.Analyzer = (*InstrumentedAnalyzer)(nil)

// InstrumentedAnalyzer wraps an Analyzer with request counters and timings.
type InstrumentedAnalyzer struct {
	next    seoentity.Analyzer
	metrics *Metrics
}

// NewInstrumentedAnalyzer creates a new InstrumentedAnalyzer.
func NewInstrumentedAnalyzer(next seoentity.Analyzer, metrics *Metrics) *InstrumentedAnalyzer {
	return &InstrumentedAnalyzer{next: next, metrics: metrics}
}

// AnalyzeEntities records one analyze_entities observation.
func (a *InstrumentedAnalyzer) AnalyzeEntities(ctx context.Context, text string) (entities []seoentity.RawEntity, err error) {
	defer a.observe("analyze_entities", time.Now(), &err)
	return a.next.AnalyzeEntities(ctx, text)
}

// ClassifyText records one classify_text observation.
func (a *InstrumentedAnalyzer) ClassifyText(ctx context.Context, text string) (category *seoentity.Category, err error) {
	defer a.observe("classify_text", time.Now(), &err)
	return a.next.ClassifyText(ctx, text)
}

func (a *InstrumentedAnalyzer) observe(method string, begin time.Time, err *error) {
	a.metrics.AnalyzerDuration.WithLabelValues(method).Observe(time.Since(begin).Seconds())
	a.metrics.AnalyzerRequests.WithLabelValues(method, status(*err)).Inc()
}

// status maps an error to a label value: "ok" or the error code.
func status(err error) string {
	if err == nil {
		return StatusOK
	}
	return seoentity.ErrorCode(err)
}
