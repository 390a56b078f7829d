package boot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/c360/bootsteps/component"
	"github.com/c360/bootsteps/config"
	"github.com/c360/bootsteps/errors"
	"github.com/c360/bootsteps/graph"
	"github.com/c360/bootsteps/metric"
)

// ShutdownNetTimeout bounds the process-wide default network I/O timeout
// for the duration of the shutdown window.
const ShutdownNetTimeout = 5 * time.Second

// Hook is a lifecycle notification callback
type Hook func()

// Option configures a Namespace
type Option func(*Namespace)

// WithLogger sets the structured logger the namespace traces progress with
func WithLogger(logger *slog.Logger) Option {
	return func(ns *Namespace) { ns.logger = logger }
}

// WithRegistry sets the blueprint registry to claim from instead of the
// process-wide default.
func WithRegistry(registry *component.Registry) Option {
	return func(ns *Namespace) { ns.registry = registry }
}

// WithMetrics enables orchestration metrics on the given registry
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(ns *Namespace) { ns.metricsRegistry = registry }
}

// WithModules sets the registrars run before claiming, so that loading a
// namespace's modules has the side effect of registering their blueprints.
func WithModules(registrars ...component.Registrar) Option {
	return func(ns *Namespace) { ns.modules = registrars }
}

// WithOnStart sets a hook invoked when the namespace enters the run state,
// before any component is started.
func WithOnStart(hook Hook) Option {
	return func(ns *Namespace) { ns.onStart = hook }
}

// WithOnClose sets a hook invoked at the beginning of every Close sweep
func WithOnClose(hook Hook) Option {
	return func(ns *Namespace) { ns.onClose = hook }
}

// WithOnStopped sets a hook invoked after all components stopped cleanly
func WithOnStopped(hook Hook) Option {
	return func(ns *Namespace) { ns.onStopped = hook }
}

// WithContinueOnStopError makes the shutdown sweep log a failing component
// stop call and keep going, instead of aborting the sweep with the error.
// The terminal state and the shutdown signal are guaranteed either way.
func WithContinueOnStopError() Option {
	return func(ns *Namespace) { ns.continueOnStopError = true }
}

// Namespace claims the blueprints registered under its name, resolves their
// boot order, binds them against a host object, and drives the resulting
// components through the start/stop/close/terminate protocol.
//
// The orchestrator itself is strictly sequential: components start in
// resolved order and stop in reverse, one at a time, in whatever goroutine
// calls Start or Stop. Stop is safe to call from a different goroutine than
// the one that called Start, such as a signal handler.
type Namespace struct {
	name   string
	logger *slog.Logger

	registry        *component.Registry
	metricsRegistry *metric.MetricsRegistry
	metrics         *namespaceMetrics
	modules         []component.Registrar

	onStart   Hook
	onClose   Hook
	onStopped Hook

	continueOnStopError bool

	mu       sync.Mutex
	state    State
	started  int
	stopping bool
	applied  bool

	bootSteps  []*BoundStep // every bound step, in boot order
	components []*BoundStep // included lifecycle-capable subset, same order
	graph      *graph.DependencyGraph

	shutdownOnce     sync.Once
	shutdownComplete chan struct{}
}

// New creates a namespace claiming the blueprints registered under name
func New(name string, opts ...Option) *Namespace {
	ns := &Namespace{
		name:             name,
		logger:           slog.Default(),
		registry:         component.Default,
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ns)
	}
	ns.logger = ns.logger.With("namespace", name)
	ns.metrics = newNamespaceMetrics(name, ns.metricsRegistry)
	return ns
}

// Name returns the namespace name
func (ns *Namespace) Name() string { return ns.name }

// State returns the current lifecycle state
func (ns *Namespace) State() State {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.state
}

// Started returns how many components have completed their start call
func (ns *Namespace) Started() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.started
}

// BootSteps returns every bound step in boot order, including steps whose
// include predicate rejected them.
func (ns *Namespace) BootSteps() []*BoundStep {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	steps := make([]*BoundStep, len(ns.bootSteps))
	copy(steps, ns.bootSteps)
	return steps
}

// Components returns the included lifecycle-capable steps in boot order.
// This is the operand list of Start, Stop and Terminate.
func (ns *Namespace) Components() []*BoundStep {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	comps := make([]*BoundStep, len(ns.components))
	copy(comps, ns.components)
	return comps
}

// ShutdownComplete returns a channel closed exactly once, when the
// namespace reaches its terminal state. Safe to wait on from any number of
// goroutines.
func (ns *Namespace) ShutdownComplete() <-chan struct{} {
	return ns.shutdownComplete
}

// Apply loads the namespace's modules, claims its blueprints, resolves the
// boot order, binds each blueprint against the host, and runs the include
// pass. It may be called exactly once per namespace.
//
// Included lifecycle-capable steps append themselves to the host's
// component list in boot order. A cycle or an unknown requirement among the
// claimed blueprints aborts Apply with a resolution error naming the
// participating components.
func (ns *Namespace) Apply(host component.Host, opts component.Options) error {
	ns.mu.Lock()
	if ns.applied {
		ns.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyApplied, "Namespace", "Apply", ns.name)
	}
	ns.applied = true
	ns.mu.Unlock()

	ns.logger.Debug("Loading modules")
	for _, registrar := range ns.modules {
		if err := registrar(ns.registry); err != nil {
			return errors.WrapFatal(err, "Namespace", "Apply", "loading modules")
		}
	}

	ns.logger.Debug("Claiming blueprints")
	claimed := ns.registry.Claim(ns.name)

	ns.logger.Debug("Building boot step graph", "blueprints", len(claimed))
	order, err := ns.resolveOrder(claimed)
	if err != nil {
		return err
	}
	ns.logger.Debug("New boot order", "order", strings.Join(order, ", "))

	byName := make(map[string]*component.Registration, len(claimed))
	for _, reg := range claimed {
		byName[reg.Name] = reg
	}

	bootSteps := make([]*BoundStep, 0, len(order))
	for _, name := range order {
		bound, err := ns.bind(byName[name], host, opts)
		if err != nil {
			return err
		}
		bootSteps = append(bootSteps, bound)
	}

	components := make([]*BoundStep, 0, len(bootSteps))
	for _, bound := range bootSteps {
		if !bound.step.IncludeIf(host) {
			ns.logger.Debug("Component excluded", "component", bound.Name())
			continue
		}
		obj, err := bound.step.Create(host)
		if err != nil {
			return errors.Wrap(err, "Namespace", "Apply", bound.Name())
		}
		bound.obj = obj
		bound.included = true
		if bound.startStop != nil {
			if holder, ok := bound.step.(component.ServiceHolder); ok {
				holder.SetService(obj)
			}
			components = append(components, bound)
			host.AddComponent(bound.startStop)
		}
		ns.logger.Debug("Component included", "component", bound.Name())
	}

	ns.mu.Lock()
	ns.bootSteps = bootSteps
	ns.components = components
	ns.mu.Unlock()
	return nil
}

// resolveOrder builds the dependency graph from the claimed blueprints,
// applies the last pin, and returns the topological boot order.
func (ns *Namespace) resolveOrder(claimed []*component.Registration) ([]string, error) {
	g := graph.New()
	var last []string
	for _, reg := range claimed {
		g.Add(reg.Name, reg.Requires...)
		if reg.Last {
			last = append(last, reg.Name)
		}
	}

	if len(last) > 1 {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %s", errors.ErrMultipleLast, strings.Join(last, ", ")),
			"Namespace", "Apply", "resolving boot order")
	}
	if len(last) == 1 {
		// Pin the marked step after every other node in the order.
		for _, node := range g.Nodes() {
			if node == last[0] {
				continue
			}
			if err := g.AddEdge(last[0], node); err != nil {
				return nil, errors.WrapFatal(err, "Namespace", "Apply", "pinning last step")
			}
		}
	}

	order, err := g.Topsort()
	if err != nil {
		return nil, errors.WrapFatal(err, "Namespace", "Apply", "resolving boot order")
	}

	ns.mu.Lock()
	ns.graph = g
	ns.mu.Unlock()
	return order, nil
}

// bind instantiates a blueprint against the host and attaches this
// namespace as the back-reference on the new instance.
func (ns *Namespace) bind(reg *component.Registration, host component.Host, opts component.Options) (*BoundStep, error) {
	step, err := reg.Factory(host, opts)
	if err != nil {
		return nil, errors.Wrap(err, "Namespace", "Apply", reg.Name)
	}
	if setter, ok := step.(component.OwnerSetter); ok {
		setter.SetOwner(ns)
	}
	bound := &BoundStep{reg: reg, step: step}
	if startStop, ok := step.(component.StartStop); ok {
		bound.startStop = startStop
	}
	return bound, nil
}

// Start drives every included component's start call in boot order. The
// started count is recorded before each start call, so a failure partway
// through leaves the namespace in the run state with an accurate count of
// what completed; Stop inspects that count to decide whether component
// stop calls are safe.
//
// A component's start failure propagates to the caller with the offending
// component named. Nothing started is rolled back here.
func (ns *Namespace) Start(ctx context.Context, host component.Host) error {
	ns.mu.Lock()
	if !ns.applied {
		ns.mu.Unlock()
		return errors.WrapInvalid(errors.ErrNotApplied, "Namespace", "Start", ns.name)
	}
	if ns.state != StateUnset {
		ns.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Namespace", "Start", ns.name)
	}
	ns.state = StateRun
	components := ns.components
	ns.mu.Unlock()
	ns.metrics.setState(StateRun)

	if ns.onStart != nil {
		ns.onStart()
	}

	for i, c := range components {
		ns.logger.Debug("Starting component", "component", c.Name())

		// Record progress before the risky call so a failure mid-start is
		// detectable later.
		ns.mu.Lock()
		ns.started = i + 1
		ns.mu.Unlock()

		begin := time.Now()
		err := c.startStop.Start(ctx, host)
		ns.metrics.recordStart(c.Name(), time.Since(begin), err)
		if err != nil {
			return errors.Wrap(err, "Namespace", "Start", c.Name())
		}
		ns.logger.Debug("Component started", "component", c.Name())
	}
	return nil
}

// Close invokes the close call of every component in the host's full
// component list. Always safe to call; close order is host-list order, not
// necessarily boot order. Failures are collected, not fatal.
func (ns *Namespace) Close(host component.Host) error {
	if ns.onClose != nil {
		ns.onClose()
	}

	var errs []error
	for _, c := range host.Components() {
		if err := c.Close(host); err != nil {
			ns.logger.Warn("Component close failed", "component", c.Name(), "error", err)
			errs = append(errs, errors.Wrap(err, "Namespace", "Close", c.Name()))
		}
	}
	return stderrors.Join(errs...)
}

// Stop drives the shutdown protocol: close every component, then stop the
// started components in reverse boot order, reach the terminal state, and
// fire the shutdown signal.
//
// Stop is idempotent past its first admission; later calls, including
// concurrent ones, are silent no-ops. If the namespace never finished
// starting, the per-component stop calls are skipped entirely, since
// running them against partially initialized state is unsafe, but the
// terminal state and the signal still happen.
func (ns *Namespace) Stop(ctx context.Context, host component.Host) error {
	return ns.stop(ctx, host, false)
}

// Terminate is Stop with each component's forced-shutdown call selected
// instead of its graceful one.
func (ns *Namespace) Terminate(ctx context.Context, host component.Host) error {
	return ns.stop(ctx, host, true)
}

func (ns *Namespace) stop(ctx context.Context, host component.Host, terminate bool) error {
	ns.mu.Lock()
	if ns.stopping || ns.state == StateClose || ns.state == StateTerminate {
		ns.mu.Unlock()
		return nil
	}
	ns.stopping = true
	state := ns.state
	started := ns.started
	components := ns.components
	ns.mu.Unlock()

	what := "Stopping"
	if terminate {
		what = "Terminating"
	}

	// Bound the default network timeout for the whole shutdown window so a
	// hung socket operation inside a component cannot block shutdown.
	restore := config.OverrideNetTimeout(ShutdownNetTimeout)
	defer restore()

	// The terminal state and the one-shot signal are guaranteed on every
	// exit path, including component stop failures.
	defer func() {
		ns.mu.Lock()
		ns.state = StateTerminate
		ns.mu.Unlock()
		ns.metrics.setState(StateTerminate)
		ns.shutdownOnce.Do(func() { close(ns.shutdownComplete) })
	}()

	if err := ns.Close(host); err != nil {
		ns.logger.Warn("Close sweep reported failures", "error", err)
	}

	if state != StateRun || started != len(components) {
		// Not fully started, component stop calls are unsafe to attempt.
		ns.logger.Debug("Skipping component shutdown", "state", state.String(), "started", started)
		return nil
	}

	ns.mu.Lock()
	ns.state = StateClose
	ns.mu.Unlock()
	ns.metrics.setState(StateClose)

	var firstErr error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		ns.logger.Debug(what+" component", "component", c.Name())

		begin := time.Now()
		var err error
		if terminate {
			err = c.startStop.Terminate(ctx, host)
		} else {
			err = c.startStop.Stop(ctx, host)
		}
		ns.metrics.recordStop(c.Name(), time.Since(begin), err)

		if err != nil {
			wrapped := errors.Wrap(err, "Namespace", "Stop", c.Name())
			if !ns.continueOnStopError {
				return wrapped
			}
			ns.logger.Warn("Component stop failed, continuing", "component", c.Name(), "error", err)
			if firstErr == nil {
				firstErr = wrapped
			}
		}
	}

	if firstErr == nil && ns.onStopped != nil {
		ns.onStopped()
	}
	return firstErr
}

// Join blocks until the namespace reaches its terminal state or ctx is
// done. Cancellation of the waiting context is swallowed and treated as
// successful completion: a caller awaiting shutdown during process
// teardown is not penalized for its own context being torn down.
func (ns *Namespace) Join(ctx context.Context) {
	select {
	case <-ns.shutdownComplete:
	case <-ctx.Done():
	}
}
