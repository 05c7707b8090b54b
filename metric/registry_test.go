package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistryRegistersCoreMetrics(t *testing.T) {
	registry := NewMetricsRegistry()

	registry.CoreMetrics().RecordCommand("discover_nodes", "success", 5*time.Millisecond)
	registry.CoreMetrics().RecordResolveTier("exact_cache")
	registry.CoreMetrics().RecordCacheEviction()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["scriptbridge_commands_total"])
	assert.True(t, names["scriptbridge_resolve_tier_total"])
	assert.True(t, names["scriptbridge_cache_evictions_total"])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scriptbridge_test_ops_total",
		Help: "test counter",
	})
	require.NoError(t, registry.Register("svc", "ops_total", counter))
	assert.Error(t, registry.Register("svc", "ops_total", counter))
}

func TestUnregisterAllowsReRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scriptbridge_test_reregister_total",
		Help: "test counter",
	})
	require.NoError(t, registry.Register("svc", "reregister", counter))
	assert.True(t, registry.Unregister("svc", "reregister"))
	assert.False(t, registry.Unregister("svc", "reregister"))
	assert.NoError(t, registry.Register("svc", "reregister", counter))
}

func TestNATSStatusGauge(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordNATSStatus(true)

	value := testGaugeValue(t, registry, "scriptbridge_nats_connected")
	assert.Equal(t, 1.0, value)

	registry.CoreMetrics().RecordNATSStatus(false)
	assert.Equal(t, 0.0, testGaugeValue(t, registry, "scriptbridge_nats_connected"))
}

func testGaugeValue(t *testing.T, registry *MetricsRegistry, name string) float64 {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			require.Len(t, f.GetMetric(), 1)
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
