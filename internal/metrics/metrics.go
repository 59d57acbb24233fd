// Package metrics registers the Prometheus collectors of the server. They are
// served on GET /metrics from the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	// Analysis service
	AnalysisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piet_analysis_operations_total",
			Help: "Analysis service operations by operation and outcome",
		},
		[]string{"operation", "outcome"}, // list, get, save, delete, count
	)

	AnalysisReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "piet_analysis_reads_total",
			Help: "Read-touch increments applied to stored analyses",
		},
	)

	AnalysisDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "piet_analysis_documents",
			Help: "Number of stored analyses at the last health check",
		},
	)

	// Document store
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "piet_store_operation_duration_seconds",
			Help:    "Duration of document store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piet_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "piet_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordAnalysisOperation counts one service operation
func RecordAnalysisOperation(operation, outcome string) {
	AnalysisOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveStoreOperation records the latency of one store call started at start
func ObserveStoreOperation(operation string, start time.Time) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordHTTPRequest records one served request. route is the registered path, not the raw URL.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
