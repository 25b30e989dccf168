// Package telemetry provides OpenTelemetry instrumentation for the
// assistant service. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "assistant"

// Metrics holds all assistant Prometheus metrics
type Metrics struct {
	// Answer cascade metrics
	AnswersTotal   *prometheus.CounterVec
	AnswerDuration *prometheus.HistogramVec
	CriticalTotal  prometheus.Counter

	// Strategy internals
	DiseaseCandidates prometheus.Histogram
	RetrievalResults  prometheus.Histogram

	// Hospital lookup metrics
	HospitalLookups *prometheus.CounterVec

	// HTTP surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initAnswerMetrics(m)
	initStrategyMetrics(m)
	initHospitalMetrics(m)
	initHTTPMetrics(m)
	return m
}

func initAnswerMetrics(m *Metrics) {
	m.AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_answers_total",
		Help: "Total answers produced, by resolving cascade stage and language",
	}, []string{"stage", "language"})

	m.AnswerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_answer_duration_seconds",
		Help:    "Time to compose a single answer",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"stage"})

	m.CriticalTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_critical_answers_total",
		Help: "Total answers flagged critical by emergency triage",
	})
}

func initStrategyMetrics(m *Metrics) {
	m.DiseaseCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_disease_candidates",
		Help:    "Disease candidates returned per lookup",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	m.RetrievalResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_retrieval_results",
		Help:    "Knowledge documents accepted per retrieval",
		Buckets: []float64{0, 1, 2, 3},
	})
}

func initHospitalMetrics(m *Metrics) {
	m.HospitalLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_hospital_lookups_total",
		Help: "Hospital lookups by outcome (cached, upstream, seed, invalid, failed)",
	}, []string{"outcome"})
}

func initHTTPMetrics(m *Metrics) {
	m.RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})

	m.RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"route"})
}

// RecordAnswer records metrics for a single composed answer
func (p *Provider) RecordAnswer(ctx context.Context, stage, language string, critical bool, duration time.Duration) {
	p.Metrics.AnswersTotal.WithLabelValues(stage, language).Inc()
	p.Metrics.AnswerDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if critical {
		p.Metrics.CriticalTotal.Inc()
	}
}

// RecordDiseaseCandidates records how many disease candidates a lookup produced
func (p *Provider) RecordDiseaseCandidates(ctx context.Context, count int) {
	p.Metrics.DiseaseCandidates.Observe(float64(count))
}

// RecordRetrievalResults records how many documents a retrieval accepted
func (p *Provider) RecordRetrievalResults(ctx context.Context, count int) {
	p.Metrics.RetrievalResults.Observe(float64(count))
}

// RecordHospitalLookup records a hospital lookup outcome
func (p *Provider) RecordHospitalLookup(ctx context.Context, outcome string) {
	p.Metrics.HospitalLookups.WithLabelValues(outcome).Inc()
}

// RecordRequest records one HTTP request
func (p *Provider) RecordRequest(route, status string, duration time.Duration) {
	p.Metrics.RequestsTotal.WithLabelValues(route, status).Inc()
	p.Metrics.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
