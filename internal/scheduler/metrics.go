/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package scheduler

import "github.com/prometheus/client_golang/prometheus"

const instanceLabel = "instance"

// PrometheusMetrics represents Prometheus metrics of schedulers.
// One instance may be shared by several schedulers, they are distinguished by the instance label.
type PrometheusMetrics struct {
	BacklogTasks       *prometheus.GaugeVec
	ActiveDrains       *prometheus.GaugeVec
	QueuedTotal        *prometheus.CounterVec
	DroppedTotal       *prometheus.CounterVec
	DrainedTotal       *prometheus.CounterVec
	BacklogWaitSeconds *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	labels := []string{instanceLabel}
	return &PrometheusMetrics{
		BacklogTasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backlog_tasks",
			Help:      "Number of deferred tasks waiting in the backlog.",
		}, labels),
		ActiveDrains: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drain_loops_active",
			Help:      "Number of identities which backlog is being drained.",
		}, labels),
		QueuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_queued_total",
			Help:      "Number of tasks deferred because of rate limiting.",
		}, labels),
		DroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dropped_total",
			Help:      "Number of rate limited tasks dropped because the backlog of the identity is full.",
		}, labels),
		DrainedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backlog_drained_total",
			Help:      "Number of deferred tasks run from the backlog.",
		}, labels),
		BacklogWaitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backlog_wait_seconds",
			Help:      "Time a deferred task spent in the backlog before it was run.",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, labels),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.BacklogTasks,
		pm.ActiveDrains,
		pm.QueuedTotal,
		pm.DroppedTotal,
		pm.DrainedTotal,
		pm.BacklogWaitSeconds,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.BacklogTasks)
	prometheus.Unregister(pm.ActiveDrains)
	prometheus.Unregister(pm.QueuedTotal)
	prometheus.Unregister(pm.DroppedTotal)
	prometheus.Unregister(pm.DrainedTotal)
	prometheus.Unregister(pm.BacklogWaitSeconds)
}

type instanceMetrics struct {
	backlogTasks prometheus.Gauge
	activeDrains prometheus.Gauge
	queued       prometheus.Counter
	dropped      prometheus.Counter
	drained      prometheus.Counter
	backlogWait  prometheus.Observer
}

func (pm *PrometheusMetrics) forInstance(instance string) *instanceMetrics {
	return &instanceMetrics{
		backlogTasks: pm.BacklogTasks.WithLabelValues(instance),
		activeDrains: pm.ActiveDrains.WithLabelValues(instance),
		queued:       pm.QueuedTotal.WithLabelValues(instance),
		dropped:      pm.DroppedTotal.WithLabelValues(instance),
		drained:      pm.DrainedTotal.WithLabelValues(instance),
		backlogWait:  pm.BacklogWaitSeconds.WithLabelValues(instance),
	}
}
