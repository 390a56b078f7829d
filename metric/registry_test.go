package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	r := NewMetricsRegistry()
	require.NotNil(t, r.PrometheusRegistry())
	require.NotNil(t, r.CoreMetrics())

	// Orchestration metrics gather cleanly once labeled.
	r.CoreMetrics().NamespaceState.WithLabelValues("worker").Set(1)
	r.CoreMetrics().StepUp.WithLabelValues("worker", "connection").Set(1)

	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["bootsteps_namespace_state"])
	assert.True(t, names["bootsteps_step_up"])
}

func TestRegisterCollector(t *testing.T) {
	r := NewMetricsRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "worker_queue_depth"})

	require.NoError(t, r.RegisterCollector("consumer", "queue_depth", gauge))

	err := r.RegisterCollector("consumer", "queue_depth", gauge)
	require.Error(t, err, "duplicate registration is rejected")

	assert.True(t, r.Unregister("consumer", "queue_depth"))
	assert.False(t, r.Unregister("consumer", "queue_depth"))
}
