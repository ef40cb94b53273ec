// Package metrics defines the Prometheus counters recorded while running
// workflows. The CLI can dump them to a textfile for node_exporter.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cozeflow_executions_total",
			Help: "Total workflow executions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	executionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cozeflow_execution_duration_seconds",
			Help:    "Wall time of workflow submissions by mode",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)

	streamChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cozeflow_stream_chunks_total",
			Help: "Total stream chunks received by event kind",
		},
		[]string{"event"},
	)

	asyncQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cozeflow_async_queries_total",
			Help: "Total async run-history queries by reported status",
		},
		[]string{"status"},
	)

	historyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cozeflow_history_persistence_errors_total",
			Help: "Total swallowed history persistence errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	directoryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cozeflow_directory_requests_total",
			Help: "Total workflow directory listings by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePending = "pending"
	OutcomeInvalid = "invalid"
)

// RecordExecution counts a finished submission and observes its duration.
func RecordExecution(mode, outcome string, d time.Duration) {
	executions.WithLabelValues(mode, outcome).Inc()
	executionDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordStreamChunk counts one received stream chunk.
func RecordStreamChunk(event string) {
	streamChunks.WithLabelValues(event).Inc()
}

// RecordAsyncQuery counts one run-history query by the status it reported.
func RecordAsyncQuery(status string) {
	asyncQueries.WithLabelValues(status).Inc()
}

// RecordPersistenceError increments the history persistence error counter.
// errorType is derived from the error by ErrorType.
func RecordPersistenceError(operation, errorType string) {
	historyErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordDirectoryRequest counts one directory listing.
func RecordDirectoryRequest(outcome string) {
	directoryRequests.WithLabelValues(outcome).Inc()
}

// ErrorType classifies a persistence error for the error_type label.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, os.ErrPermission):
		return "permission_denied"
	case errors.Is(err, os.ErrNotExist):
		return "not_found"
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "timeout"
	default:
		return "io_error"
	}
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
