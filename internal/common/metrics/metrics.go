// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_queries_executed_total",
			Help: "Total number of catalog queries executed against the store",
		},
		[]string{"intent"},
	)

	RequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_requests_failed_total",
			Help: "Total number of requests that returned an error envelope",
		},
		[]string{"error_code"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "concierge_context_fetch_duration_seconds",
			Help: "Duration of context-bundle fan-out fetches in seconds",
		},
		[]string{"strategy"},
	)

	RequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "concierge_requests_active",
			Help: "Number of in-flight query requests",
		},
	)
)
