// Package metrics provides Prometheus metrics for datastore operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store operation metrics
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlrun_datastore_operation_duration_seconds",
			Help:    "Datastore operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlrun_datastore_operations_total",
			Help: "Total datastore operations",
		},
		[]string{"store", "operation", "status"},
	)

	// Transfer metrics
	bytesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlrun_datastore_bytes_read_total",
			Help: "Total bytes read from object stores",
		},
		[]string{"store"},
	)

	bytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlrun_datastore_bytes_written_total",
			Help: "Total bytes written to object stores",
		},
		[]string{"store"},
	)

	// Enumeration metrics
	keysDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlrun_datastore_keys_deleted_total",
			Help: "Total keys deleted by recursive removals",
		},
		[]string{"store"},
	)

	// Connection metrics
	connectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlrun_datastore_connections_total",
			Help: "Total backend connections established",
		},
		[]string{"store", "mode"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation records a datastore operation.
func RecordOperation(store, operation string, duration time.Duration, success bool) {
	operationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	operationsTotal.WithLabelValues(store, operation, status).Inc()
}

// RecordBytesRead records bytes read from a store.
func RecordBytesRead(store string, n int64) {
	bytesRead.WithLabelValues(store).Add(float64(n))
}

// RecordBytesWritten records bytes written to a store.
func RecordBytesWritten(store string, n int64) {
	bytesWritten.WithLabelValues(store).Add(float64(n))
}

// RecordKeysDeleted records keys deleted by a removal.
func RecordKeysDeleted(store string, n int64) {
	keysDeleted.WithLabelValues(store).Add(float64(n))
}

// RecordConnection records an established backend connection.
// For redis the mode is either "cluster" or "single".
func RecordConnection(store, mode string) {
	connectionsTotal.WithLabelValues(store, mode).Inc()
}
