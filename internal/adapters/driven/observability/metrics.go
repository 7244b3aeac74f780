package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.IngestObserver = (*Metrics)(nil)

// LLMBuckets covers chat latencies from 50ms to two minutes.
var LLMBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics holds the collectors on a private registry, so several instances
// can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	IngestEvents    *prometheus.CounterVec
	Documents       *prometheus.CounterVec
	Answers         *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_http_requests_total",
				Help: "HTTP requests by method, route and status class.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_http_request_duration_seconds",
				Help:    "HTTP request duration.",
				Buckets: LLMBuckets,
			},
			[]string{"method", "route"},
		),
		IngestEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_ingest_events_total",
				Help: "Ingestion steps by step and status.",
			},
			[]string{"step", "status"},
		),
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_ingest_documents_total",
				Help: "Ingested documents by result.",
			},
			[]string{"result"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_chat_answers_total",
				Help: "Chat answers by status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.IngestEvents,
		m.Documents,
		m.Answers,
	)
	return m
}

// Observe counts an ingestion event. FINAL success and ERROR also count
// the document outcome.
func (m *Metrics) Observe(event domain.IngestEvent) {
	m.IngestEvents.WithLabelValues(string(event.Step), string(event.Status)).Inc()
	switch {
	case event.Step == domain.StepFinal && event.Status == domain.StatusSuccess:
		m.Documents.WithLabelValues("success").Inc()
	case event.Step == domain.StepError:
		m.Documents.WithLabelValues("failed").Inc()
	}
}

// ObserveAnswer counts one chat answer.
func (m *Metrics) ObserveAnswer(status domain.AnswerStatus) {
	m.Answers.WithLabelValues(string(status)).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status/100)+"xx").Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
