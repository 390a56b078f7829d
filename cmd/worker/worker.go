package main

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/bootsteps/component"
	"github.com/c360/bootsteps/config"
	"github.com/c360/bootsteps/metric"
	"github.com/c360/bootsteps/natsclient"
)

// Worker is the host object whose services the boot steps create and
// manage. Steps mutate it as they are created: the connection step installs
// the NATS client, and every lifecycle-capable step appends itself to the
// component list.
type Worker struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metric.MetricsRegistry
	instanceID string

	// NATS is installed by the connection step during Apply
	NATS *natsclient.Client

	mu         sync.Mutex
	components []component.StartStop
}

// NewWorker creates a worker host with a fresh instance identity
func NewWorker(cfg *config.Config, logger *slog.Logger, metrics *metric.MetricsRegistry) *Worker {
	return &Worker{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		instanceID: uuid.NewString(),
	}
}

// Components returns the worker's component list in the order steps
// appended themselves.
func (w *Worker) Components() []component.StartStop {
	w.mu.Lock()
	defer w.mu.Unlock()
	components := make([]component.StartStop, len(w.components))
	copy(components, w.components)
	return components
}

// AddComponent appends a lifecycle-capable step to the worker
func (w *Worker) AddComponent(c component.StartStop) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.components = append(w.components, c)
}

// natsClientFor builds the worker's NATS client from its configuration
func natsClientFor(w *Worker) *natsclient.Client {
	name := w.cfg.NATS.Name
	if name == "" {
		name = w.cfg.Platform.Name + "-" + w.instanceID
	}
	return natsclient.New(natsclient.Options{
		URL:           w.cfg.NATS.URL,
		Name:          name,
		Timeout:       w.cfg.NATS.ConnectTimeout.Std(),
		MaxReconnects: w.cfg.NATS.MaxReconnects,
		ReconnectWait: w.cfg.NATS.ReconnectWait.Std(),
		Logger:        w.logger,
	})
}
