package boot

import (
	"github.com/c360/bootsteps/component"
)

// BoundStep is a blueprint instantiated against a specific host. It keeps
// the registration metadata, the bound step instance, and the service
// object the step created once included.
type BoundStep struct {
	reg       *component.Registration
	step      component.Step
	startStop component.StartStop // non-nil when the step is lifecycle-capable
	obj       component.Service
	included  bool
}

// Name returns the blueprint name
func (b *BoundStep) Name() string { return b.reg.Name }

// Step returns the bound step instance
func (b *BoundStep) Step() component.Step { return b.step }

// Included reports whether the step's include predicate accepted it
func (b *BoundStep) Included() bool { return b.included }

// Object returns the service object the step created, nil when the step
// creates none or was not included.
func (b *BoundStep) Object() component.Service { return b.obj }
