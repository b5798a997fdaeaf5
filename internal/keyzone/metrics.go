/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package keyzone

import "github.com/prometheus/client_golang/prometheus"

const zoneLabel = "zone"

// MetricsCollector collects statistics about zone occupancy.
type MetricsCollector interface {
	// SetAmount sets the number of identities in the zone.
	SetAmount(int)

	// AddEvictions increments the number of evicted identities.
	AddEvictions(int)
}

// PrometheusMetrics represents Prometheus metrics for key zones. One instance serves all zones,
// each zone gets its own collector via ForZone.
type PrometheusMetrics struct {
	Identities     *prometheus.GaugeVec
	EvictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return &PrometheusMetrics{
		Identities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keyzone_identities",
			Help:      "Number of identities which state is kept in the zone.",
		}, []string{zoneLabel}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyzone_evictions_total",
			Help:      "Number of identities evicted from the zone.",
		}, []string{zoneLabel}),
	}
}

// ForZone returns a collector bound to the zone with the given name.
func (pm *PrometheusMetrics) ForZone(name string) MetricsCollector {
	return zoneMetrics{
		identities: pm.Identities.WithLabelValues(name),
		evictions:  pm.EvictionsTotal.WithLabelValues(name),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.Identities, pm.EvictionsTotal)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.Identities)
	prometheus.Unregister(pm.EvictionsTotal)
}

type zoneMetrics struct {
	identities prometheus.Gauge
	evictions  prometheus.Counter
}

func (m zoneMetrics) SetAmount(n int) {
	m.identities.Set(float64(n))
}

func (m zoneMetrics) AddEvictions(n int) {
	m.evictions.Add(float64(n))
}

type disabledMetrics struct{}

func (disabledMetrics) SetAmount(int)    {}
func (disabledMetrics) AddEvictions(int) {}
