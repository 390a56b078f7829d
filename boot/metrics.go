package boot

import (
	"time"

	"github.com/c360/bootsteps/metric"
)

// namespaceMetrics records orchestration metrics for one namespace. All
// methods are safe on a nil receiver so namespaces without a metrics
// registry pay no cost.
type namespaceMetrics struct {
	namespace string
	core      *metric.Metrics
}

func newNamespaceMetrics(namespace string, registry *metric.MetricsRegistry) *namespaceMetrics {
	if registry == nil {
		return nil
	}
	return &namespaceMetrics{namespace: namespace, core: registry.CoreMetrics()}
}

func (m *namespaceMetrics) setState(state State) {
	if m == nil {
		return
	}
	m.core.NamespaceState.WithLabelValues(m.namespace).Set(float64(state))
}

func (m *namespaceMetrics) recordStart(step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.core.BootFailures.WithLabelValues(m.namespace, step).Inc()
		return
	}
	m.core.StartDuration.WithLabelValues(m.namespace, step).Observe(duration.Seconds())
	m.core.StepUp.WithLabelValues(m.namespace, step).Set(1)
}

func (m *namespaceMetrics) recordStop(step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.core.StopFailures.WithLabelValues(m.namespace, step).Inc()
	} else {
		m.core.StopDuration.WithLabelValues(m.namespace, step).Observe(duration.Seconds())
	}
	m.core.StepUp.WithLabelValues(m.namespace, step).Set(0)
}
