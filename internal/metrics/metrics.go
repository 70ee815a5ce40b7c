// Package metrics holds the Prometheus collectors of the chat endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat request outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeBadRequest    = "bad_request"
	OutcomeMissingKey    = "missing_key"
	OutcomeUpstreamError = "upstream_error"
	OutcomeServerError   = "server_error"
)

// Metrics is a set of collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	ChatRequests     *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram
	PointsPadded     prometheus.Counter
}

// New creates the collectors and registers them, with the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxinsight_chat_requests_total",
			Help: "Chat requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxinsight_upstream_duration_seconds",
			Help:    "Duration of upstream chat completion calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		PointsPadded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxinsight_points_padded_total",
			Help: "Filler points appended to reach the requested minimum.",
		}),
	}

	m.registry.MustRegister(
		m.ChatRequests,
		m.UpstreamDuration,
		m.PointsPadded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveChat records the outcome of one chat request.
func (m *Metrics) ObserveChat(outcome string) {
	m.ChatRequests.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one upstream call started at start.
func (m *Metrics) ObserveUpstream(start time.Time) {
	m.UpstreamDuration.Observe(time.Since(start).Seconds())
}

// ObservePadding records how many filler points were appended.
func (m *Metrics) ObservePadding(before, after int) {
	if after > before {
		m.PointsPadded.Add(float64(after - before))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
