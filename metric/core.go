package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the boot orchestration metrics
type Metrics struct {
	// NamespaceState reports the lifecycle state of each namespace
	// (0=unset, 1=run, 2=close, 3=terminate)
	NamespaceState *prometheus.GaugeVec

	// StepUp reports whether a step is currently started (1) or not (0)
	StepUp *prometheus.GaugeVec

	// StartDuration observes how long each step's start call took
	StartDuration *prometheus.HistogramVec

	// StopDuration observes how long each step's stop or terminate call took
	StopDuration *prometheus.HistogramVec

	// BootFailures counts failed step start calls
	BootFailures *prometheus.CounterVec

	// StopFailures counts failed step stop and terminate calls
	StopFailures *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all orchestration metrics
func NewMetrics() *Metrics {
	return &Metrics{
		NamespaceState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bootsteps",
				Subsystem: "namespace",
				Name:      "state",
				Help:      "Namespace lifecycle state (0=unset, 1=run, 2=close, 3=terminate)",
			},
			[]string{"namespace"},
		),

		StepUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bootsteps",
				Subsystem: "step",
				Name:      "up",
				Help:      "Whether the step is currently started (1) or not (0)",
			},
			[]string{"namespace", "step"},
		),

		StartDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bootsteps",
				Subsystem: "step",
				Name:      "start_duration_seconds",
				Help:      "Step start call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"namespace", "step"},
		),

		StopDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bootsteps",
				Subsystem: "step",
				Name:      "stop_duration_seconds",
				Help:      "Step stop/terminate call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"namespace", "step"},
		),

		BootFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bootsteps",
				Subsystem: "step",
				Name:      "boot_failures_total",
				Help:      "Total number of failed step start calls",
			},
			[]string{"namespace", "step"},
		),

		StopFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bootsteps",
				Subsystem: "step",
				Name:      "stop_failures_total",
				Help:      "Total number of failed step stop/terminate calls",
			},
			[]string{"namespace", "step"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.NamespaceState,
		m.StepUp,
		m.StartDuration,
		m.StopDuration,
		m.BootFailures,
		m.StopFailures,
	}
}
