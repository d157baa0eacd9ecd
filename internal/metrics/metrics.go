package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// NotifierCycles counts completed poll cycles of the change notifier.
	NotifierCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantumtrack_notifier_cycles_total",
		Help: "Number of notifier poll cycles executed.",
	})

	// EventsPublished counts job-status-change events fanned out to subscribers.
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantumtrack_events_published_total",
		Help: "Number of job status change events published.",
	})

	// Subscribers tracks the number of connected WebSocket subscribers.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quantumtrack_ws_subscribers",
		Help: "Currently connected WebSocket subscribers.",
	})

	// RequestsTotal counts served HTTP requests by route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantumtrack_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"route", "code"})

	// UpstreamErrors counts failed queries against the remote quantum service.
	UpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantumtrack_upstream_errors_total",
		Help: "Failed requests against the remote quantum service.",
	})
)

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
