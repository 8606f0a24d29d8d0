// Package metrics provides Prometheus instrumentation for evmscan.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enabled bool

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
)

// Init initializes the metrics system. Until it is called with true,
// Transport is a passthrough.
func Init(enabledFlag bool) {
	enabled = enabledFlag

	if !enabled {
		return
	}

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_requests_total",
			Help: "Total number of explorer API requests",
		},
		[]string{"module", "action", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_request_duration_seconds",
			Help:    "Explorer API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"module", "action"},
	)
}
