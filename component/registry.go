package component

import (
	"fmt"
	"strings"
	"sync"

	"github.com/c360/bootsteps/errors"
)

// Options carries orchestration-time configuration from the caller of
// Namespace.Apply through to every blueprint factory.
type Options map[string]any

// Factory binds a blueprint to a host object, producing the bound step
// instance. Factories must not do I/O; that belongs in the created
// service's Start.
type Factory func(host Host, opts Options) (Step, error)

// Registrar registers one or more blueprints into a registry. Namespaces
// run their configured registrars before claiming, so registration is an
// explicit call rather than a side effect of package loading.
type Registrar func(*Registry) error

// Registration is the declarative blueprint for one boot step: metadata
// plus the factory that binds it to a host. It is registered once, at
// definition time, and lives in the registry until a namespace claims it.
type Registration struct {
	// Name of the step, unique within its namespace. May be given as
	// "namespace.name" to set both fields at once.
	Name string

	// Namespace identifies the owning namespace; defaults from a dotted
	// Name.
	Namespace string

	// Requires names other blueprints in the same namespace that must
	// boot first.
	Requires []string

	// Last forces this step after every other step in the namespace. At
	// most one blueprint per namespace may set it.
	Last bool

	// Factory binds the blueprint to a host object.
	Factory Factory

	// Description is human-readable metadata, used only for logging.
	Description string
}

// Registry is the process-wide table of unclaimed blueprints, partitioned
// by namespace. Each namespace claims exactly its own bucket during Apply.
// Registration order within a bucket is preserved; it breaks ties in the
// resolved boot order.
type Registry struct {
	mu        sync.Mutex
	unclaimed map[string]map[string]*Registration
	order     map[string][]string
}

// NewRegistry creates a new empty blueprint registry
func NewRegistry() *Registry {
	return &Registry{
		unclaimed: make(map[string]map[string]*Registration),
		order:     make(map[string][]string),
	}
}

// Register stores a blueprint under its namespace. A blueprint without a
// resolvable name or namespace is a definition-time fatal error, not
// deferred to claim time.
func (r *Registry) Register(reg Registration) error {
	if before, after, found := strings.Cut(reg.Name, "."); found {
		if reg.Namespace == "" {
			reg.Namespace = before
		}
		reg.Name = after
	}
	if reg.Name == "" {
		return errors.WrapFatal(errors.ErrMissingName, "Registry", "Register", "blueprint definition")
	}
	if reg.Namespace == "" {
		return errors.WrapFatal(errors.ErrMissingNamespace, "Registry", "Register",
			fmt.Sprintf("blueprint %q definition", reg.Name))
	}
	if reg.Factory == nil {
		return errors.WrapFatal(errors.ErrMissingFactory, "Registry", "Register",
			fmt.Sprintf("blueprint %q definition", reg.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.unclaimed[reg.Namespace]
	if !ok {
		bucket = make(map[string]*Registration)
		r.unclaimed[reg.Namespace] = bucket
	}
	if _, exists := bucket[reg.Name]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyRegistered, "Registry", "Register",
			fmt.Sprintf("blueprint %q in namespace %q", reg.Name, reg.Namespace))
	}

	bucket[reg.Name] = &reg
	r.order[reg.Namespace] = append(r.order[reg.Namespace], reg.Name)
	return nil
}

// Claim retrieves and removes the blueprints registered under a namespace,
// in registration order. Claiming an unknown namespace yields an empty
// working set.
func (r *Registry) Claim(namespace string) []*Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.unclaimed[namespace]
	names := r.order[namespace]
	delete(r.unclaimed, namespace)
	delete(r.order, namespace)

	regs := make([]*Registration, 0, len(names))
	for _, name := range names {
		regs = append(regs, bucket[name])
	}
	return regs
}

// Names returns the names registered under a namespace, in registration
// order, without claiming them.
func (r *Registry) Names(namespace string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.order[namespace]))
	copy(names, r.order[namespace])
	return names
}

// Default is the process-wide registry used when a namespace is not given
// an explicit one.
var Default = NewRegistry()

// Register stores a blueprint in the default registry
func Register(reg Registration) error {
	return Default.Register(reg)
}
