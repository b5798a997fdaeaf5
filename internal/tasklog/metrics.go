/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package tasklog

import "github.com/prometheus/client_golang/prometheus"

const (
	failureReasonQueueFull    = "queue_full"
	failureReasonWriteError   = "write_error"
	failureReasonFlushTimeout = "flush_timeout"
	failureReasonClosed       = "closed"
)

// PrometheusMetrics represents Prometheus metrics of the task log.
type PrometheusMetrics struct {
	EntriesWritten prometheus.Counter
	WriteFailures  *prometheus.CounterVec
	WriteRetries   prometheus.Counter
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return &PrometheusMetrics{
		EntriesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_log_entries_written_total",
			Help:      "Number of entries written to the task log.",
		}),
		WriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_log_write_failures_total",
			Help:      "Number of entries lost by the task log.",
		}, []string{"reason"}),
		WriteRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_log_write_retries_total",
			Help:      "Number of retried writes to the task log.",
		}),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.EntriesWritten, pm.WriteFailures, pm.WriteRetries)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.EntriesWritten)
	prometheus.Unregister(pm.WriteFailures)
	prometheus.Unregister(pm.WriteRetries)
}
