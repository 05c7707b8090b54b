package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's core instrumentation: command traffic,
// resolution behavior, catalog/cache population, and NATS connectivity.
type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	ResolveTierTotal *prometheus.CounterVec

	DiscoverDuration    prometheus.Histogram
	CatalogEntries      prometheus.Gauge
	DescriptorCacheSize prometheus.Gauge
	CacheEvictionsTotal prometheus.Counter

	OpenDocuments  prometheus.Gauge
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates the core metrics set
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scriptbridge",
				Subsystem: "commands",
				Name:      "total",
				Help:      "Total commands handled, by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "scriptbridge",
				Subsystem: "commands",
				Name:      "duration_seconds",
				Help:      "Command handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"action"},
		),

		ResolveTierTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scriptbridge",
				Subsystem: "resolve",
				Name:      "tier_total",
				Help:      "Successful spawner resolutions, by pipeline tier",
			},
			[]string{"tier"},
		),

		DiscoverDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "scriptbridge",
				Subsystem: "discover",
				Name:      "duration_seconds",
				Help:      "Catalog walk duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		CatalogEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scriptbridge",
				Subsystem: "catalog",
				Name:      "entries",
				Help:      "Live entries in the node catalog",
			},
		),

		DescriptorCacheSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scriptbridge",
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Spawner keys currently cached",
			},
		),

		CacheEvictionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "scriptbridge",
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Stale spawner mappings evicted on lookup",
			},
		),

		OpenDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scriptbridge",
				Subsystem: "documents",
				Name:      "open",
				Help:      "Script documents currently open",
			},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scriptbridge",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "scriptbridge",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total NATS reconnections",
			},
		),
	}
}

// RecordCommand increments the command counter and observes its duration
func (m *Metrics) RecordCommand(action, outcome string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(action, outcome).Inc()
	m.CommandDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordResolveTier counts a successful resolution by the tier that found it
func (m *Metrics) RecordResolveTier(tier string) {
	m.ResolveTierTotal.WithLabelValues(tier).Inc()
}

// RecordDiscover observes one catalog walk
func (m *Metrics) RecordDiscover(duration time.Duration) {
	m.DiscoverDuration.Observe(duration.Seconds())
}

// RecordCacheEviction counts one stale-mapping eviction
func (m *Metrics) RecordCacheEviction() {
	m.CacheEvictionsTotal.Inc()
}

// RecordNATSStatus updates NATS connection status
func (m *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NATSConnected.Set(value)
}

// RecordNATSReconnect increments the reconnection counter
func (m *Metrics) RecordNATSReconnect() {
	m.NATSReconnects.Inc()
}
