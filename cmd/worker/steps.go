package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/c360/bootsteps/component"
	"github.com/c360/bootsteps/errors"
	"github.com/c360/bootsteps/metric"
)

const (
	heartbeatSubject  = "worker.heartbeat"
	eventsSubject     = "worker.events.>"
	heartbeatInterval = 10 * time.Second
)

// RegisterSteps registers the worker's boot steps. Passed to the namespace
// as a module so registration happens right before claiming.
func RegisterSteps(r *component.Registry) error {
	steps := []component.Registration{
		{
			Name:        "worker.connection",
			Factory:     newConnectionStep,
			Description: "NATS connection for all messaging components",
		},
		{
			Name:        "worker.metrics",
			Factory:     newMetricsStep,
			Description: "Prometheus metrics HTTP endpoint",
		},
		{
			Name:        "worker.heartbeat",
			Requires:    []string{"connection"},
			Factory:     newHeartbeatStep,
			Description: "periodic liveness heartbeat",
		},
		{
			Name:        "worker.consumer",
			Requires:    []string{"connection"},
			Last:        true,
			Factory:     newConsumerStep,
			Description: "event consumer, always started last",
		},
	}
	for _, reg := range steps {
		if err := r.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// connectionStep owns the worker's NATS client. Terminate closes the
// connection immediately instead of draining.
type connectionStep struct {
	component.StartStopBase

	worker *Worker
}

func newConnectionStep(host component.Host, _ component.Options) (component.Step, error) {
	w, ok := host.(*Worker)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("host must be a *Worker, got %T", host),
			"connectionStep", "newConnectionStep", "host validation")
	}
	s := &connectionStep{StartStopBase: component.NewStartStopBase("connection"), worker: w}
	return s, nil
}

func (s *connectionStep) Create(component.Host) (component.Service, error) {
	client := natsClientFor(s.worker)
	s.worker.NATS = client
	return &connectionService{worker: s.worker}, nil
}

func (s *connectionStep) Terminate(context.Context, component.Host) error {
	if s.worker.NATS != nil {
		s.worker.NATS.Close()
	}
	return nil
}

type connectionService struct {
	worker *Worker
}

func (c *connectionService) Start(ctx context.Context) error {
	return c.worker.NATS.Connect(ctx)
}

func (c *connectionService) Stop(ctx context.Context) error {
	return c.worker.NATS.Drain(ctx)
}

// metricsStep serves the Prometheus endpoint; participation follows the
// metrics config rather than the step's own enabled flag.
type metricsStep struct {
	component.StartStopBase

	worker *Worker
}

func newMetricsStep(host component.Host, _ component.Options) (component.Step, error) {
	w, ok := host.(*Worker)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("host must be a *Worker, got %T", host),
			"metricsStep", "newMetricsStep", "host validation")
	}
	s := &metricsStep{StartStopBase: component.NewStartStopBase("metrics"), worker: w}
	return s, nil
}

func (s *metricsStep) IncludeIf(component.Host) bool {
	return s.worker.cfg.Metrics.Enabled && s.worker.metrics != nil
}

func (s *metricsStep) Create(component.Host) (component.Service, error) {
	return metric.NewServer(s.worker.cfg.Metrics.Addr, s.worker.cfg.Metrics.Path, s.worker.metrics), nil
}

// heartbeatStep publishes a periodic liveness heartbeat over NATS
type heartbeatStep struct {
	component.StartStopBase

	worker *Worker
}

func newHeartbeatStep(host component.Host, _ component.Options) (component.Step, error) {
	w, ok := host.(*Worker)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("host must be a *Worker, got %T", host),
			"heartbeatStep", "newHeartbeatStep", "host validation")
	}
	s := &heartbeatStep{StartStopBase: component.NewStartStopBase("heartbeat"), worker: w}
	return s, nil
}

func (s *heartbeatStep) Create(component.Host) (component.Service, error) {
	return &heartbeatService{worker: s.worker, interval: heartbeatInterval}, nil
}

type heartbeat struct {
	InstanceID   string    `json:"instance_id"`
	Organization string    `json:"organization"`
	Platform     string    `json:"platform"`
	Timestamp    time.Time `json:"timestamp"`
}

type heartbeatService struct {
	worker   *Worker
	interval time.Duration

	cancel context.CancelFunc
	group  *errgroup.Group
}

func (h *heartbeatService) Start(context.Context) error {
	// The heartbeat outlives the bring-up context; its lifetime is bounded
	// by Stop.
	runCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.group, runCtx = errgroup.WithContext(runCtx)

	h.group.Go(func() error {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return nil
			case <-ticker.C:
				if err := h.publish(); err != nil {
					h.worker.logger.Warn("Heartbeat publish failed", "error", err)
				}
			}
		}
	})
	return nil
}

func (h *heartbeatService) publish() error {
	conn := h.worker.NATS.Conn()
	if conn == nil {
		return errors.ErrNoConnection
	}
	payload, err := json.Marshal(heartbeat{
		InstanceID:   h.worker.instanceID,
		Organization: h.worker.cfg.Platform.Organization,
		Platform:     h.worker.cfg.Platform.Name,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return conn.Publish(heartbeatSubject, payload)
}

func (h *heartbeatService) Stop(context.Context) error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	return h.group.Wait()
}

// consumerStep subscribes to the worker's event subject. Pinned last so
// events only flow once every other component is up.
type consumerStep struct {
	component.StartStopBase

	worker *Worker
}

func newConsumerStep(host component.Host, _ component.Options) (component.Step, error) {
	w, ok := host.(*Worker)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("host must be a *Worker, got %T", host),
			"consumerStep", "newConsumerStep", "host validation")
	}
	s := &consumerStep{StartStopBase: component.NewStartStopBase("consumer"), worker: w}
	return s, nil
}

func (s *consumerStep) Create(component.Host) (component.Service, error) {
	return &consumerService{worker: s.worker}, nil
}

type consumerService struct {
	worker *Worker
	sub    *nats.Subscription
}

func (c *consumerService) Start(context.Context) error {
	conn := c.worker.NATS.Conn()
	if conn == nil {
		return errors.ErrNoConnection
	}
	sub, err := conn.Subscribe(eventsSubject, func(msg *nats.Msg) {
		c.worker.logger.Debug("Event received", "subject", msg.Subject, "bytes", len(msg.Data))
	})
	if err != nil {
		return errors.WrapTransient(err, "consumerService", "Start", "subscribing to "+eventsSubject)
	}
	c.sub = sub
	return nil
}

func (c *consumerService) Stop(context.Context) error {
	if c.sub == nil {
		return nil
	}
	err := c.sub.Drain()
	c.sub = nil
	if err != nil {
		return errors.WrapTransient(err, "consumerService", "Stop", "draining subscription")
	}
	return nil
}
