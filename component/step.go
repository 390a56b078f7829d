package component

import "context"

// Service is the runtime object a step creates and manages. A connection
// pool, an event consumer, a server. The orchestrator never constructs
// services itself, it only sequences their start and stop calls.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Host is the parent object whose services are being orchestrated. It
// supplies a mutable, ordered component list that start/stop-capable steps
// append themselves to when included. The orchestrator passes the host
// unmodified to every factory, predicate, and lifecycle call and does not
// otherwise constrain its shape.
type Host interface {
	Components() []StartStop
	AddComponent(StartStop)
}

// Owner is the back-reference a bound step holds to the namespace that
// bound it. Relation only, not ownership.
type Owner interface {
	Name() string
}

// Step is the base capability of every bound boot step: an eligibility
// predicate and a constructive call. Embed Base for defaults.
type Step interface {
	Name() string

	// IncludeIf decides whether this step participates at all. The default
	// implementation returns the step's enabled flag; override it when
	// eligibility depends on the host's state.
	IncludeIf(host Host) bool

	// Create builds the step's service object. Not every step creates one;
	// returning a nil Service is valid.
	Create(host Host) (Service, error)
}

// StartStop is the capability set of steps that take part in the namespace
// lifecycle protocol. Every method is uniformly present; steps without a
// distinct behavior inherit a no-op (Close) or a delegation to the created
// service (Start, Stop) from StartStopBase.
type StartStop interface {
	Step
	Start(ctx context.Context, host Host) error
	Stop(ctx context.Context, host Host) error
	Close(host Host) error

	// Terminate is the forced-shutdown variant of Stop. The default
	// delegates to the created service's Stop; override it to skip a
	// graceful drain.
	Terminate(ctx context.Context, host Host) error
}

// OwnerSetter is implemented by steps that accept a back-reference to the
// namespace binding them. Base implements it.
type OwnerSetter interface {
	SetOwner(Owner)
}

// ServiceHolder is implemented by steps that keep the service object their
// Create call returned, so the StartStopBase defaults can delegate to it.
type ServiceHolder interface {
	SetService(Service)
	Service() Service
}

// Base provides the default Step behavior: enabled, creates nothing.
type Base struct {
	StepName string
	Enabled  bool

	owner Owner
}

// NewBase returns a Base for the given step name, enabled by default
func NewBase(name string) Base {
	return Base{StepName: name, Enabled: true}
}

// Name returns the step name
func (b *Base) Name() string { return b.StepName }

// IncludeIf returns the step's enabled flag
func (b *Base) IncludeIf(Host) bool { return b.Enabled }

// Create returns no service object
func (b *Base) Create(Host) (Service, error) { return nil, nil }

// SetOwner records the namespace that bound this step
func (b *Base) SetOwner(o Owner) { b.owner = o }

// Owner returns the namespace that bound this step, nil before binding
func (b *Base) Owner() Owner { return b.owner }

// StartStopBase provides the default StartStop behavior: lifecycle calls
// delegate to the created service object, and no-op when there is none.
//
// Defaults dispatch through the embedded base, not the embedding type: a
// step that overrides Stop and wants the same behavior on forced shutdown
// must override Terminate as well.
type StartStopBase struct {
	Base

	svc Service
}

// NewStartStopBase returns a StartStopBase for the given step name
func NewStartStopBase(name string) StartStopBase {
	return StartStopBase{Base: NewBase(name)}
}

// SetService records the service object created for this step
func (s *StartStopBase) SetService(svc Service) { s.svc = svc }

// Service returns the created service object, nil if Create returned none
func (s *StartStopBase) Service() Service { return s.svc }

// Start delegates to the created service
func (s *StartStopBase) Start(ctx context.Context, _ Host) error {
	if s.svc == nil {
		return nil
	}
	return s.svc.Start(ctx)
}

// Stop delegates to the created service
func (s *StartStopBase) Stop(ctx context.Context, _ Host) error {
	if s.svc == nil {
		return nil
	}
	return s.svc.Stop(ctx)
}

// Close does nothing by default
func (s *StartStopBase) Close(Host) error { return nil }

// Terminate defaults to a regular stop
func (s *StartStopBase) Terminate(ctx context.Context, host Host) error {
	return s.Stop(ctx, host)
}
