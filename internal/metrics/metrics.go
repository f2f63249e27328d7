// Package metrics holds the Prometheus collectors for the webhook gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hubhook"

// Result label values
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultError    = "error"
	ResultValid    = "valid"
	ResultSkipped  = "skipped"
)

// Metrics holds all Prometheus metrics for one gateway.
// Each instance owns its registry so several gateways can share a process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Verifications   *prometheus.CounterVec
	Events          *prometheus.CounterVec
	SignatureChecks *prometheus.CounterVec
	EventBytesTotal prometheus.Counter
}

// New creates and registers the gateway metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Verification handshakes by outcome",
			},
			[]string{"channel", "result"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Webhook event deliveries by outcome",
			},
			[]string{"channel", "result"},
		),
		SignatureChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signature_checks_total",
				Help:      "Payload signature checks by outcome",
			},
			[]string{"channel", "result"},
		),
		EventBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_bytes_total",
				Help:      "Total bytes of accepted event payloads",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.Verifications,
		m.Events,
		m.SignatureChecks,
		m.EventBytesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
