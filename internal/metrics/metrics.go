// Package metrics holds the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invtrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invtrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// MovementsTotal counts successfully applied movements by type.
	MovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invtrack_movements_total",
			Help: "Total number of applied stock movements",
		},
		[]string{"type"},
	)

	// MovementsRejectedTotal counts movement submissions rejected by validation.
	MovementsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invtrack_movements_rejected_total",
			Help: "Total number of rejected stock movement submissions",
		},
	)

	// ItemsCreatedTotal counts item creations, including transfer-derived items.
	ItemsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invtrack_items_created_total",
			Help: "Total number of items created",
		},
	)
)

// RecordMovement increments the applied-movement counter for a type.
func RecordMovement(movementType string) {
	MovementsTotal.WithLabelValues(movementType).Inc()
}
