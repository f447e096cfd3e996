// Package metrics defines the Prometheus instruments exported by the
// audit server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the server's instruments.
type Metrics struct {
	// Requests counts handled audit requests by outcome:
	// completed, degraded, interrupted, client_closed, invalid, upstream_error,
	// internal_error.
	Requests *prometheus.CounterVec

	// RequestLatency records end-to-end request duration by tier.
	RequestLatency *prometheus.HistogramVec

	// MalformedLines counts upstream lines that failed to parse.
	MalformedLines prometheus.Counter

	// ReplyBytes records the size of assembled replies by tier.
	ReplyBytes *prometheus.HistogramVec

	// InFlight is the number of aggregations currently running.
	InFlight prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeaudit_requests_total",
				Help: "Total number of audit requests by outcome",
			},
			[]string{"outcome"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codeaudit_request_duration_seconds",
				Help:    "Audit request latency distributions",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"tier"},
		),
		MalformedLines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "codeaudit_malformed_lines_total",
				Help: "Upstream stream lines that could not be parsed",
			},
		),
		ReplyBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codeaudit_reply_bytes",
				Help:    "Size of assembled replies",
				Buckets: prometheus.ExponentialBuckets(256, 4, 7),
			},
			[]string{"tier"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "codeaudit_inflight_requests",
				Help: "Audit requests currently streaming from the upstream",
			},
		),
	}

	reg.MustRegister(m.Requests, m.RequestLatency, m.MalformedLines, m.ReplyBytes, m.InFlight)
	return m
}
