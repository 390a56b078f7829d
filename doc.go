// Package bootsteps is a dependency-ordered component-lifecycle
// orchestrator for long-running worker processes.
//
// A host process declares named, pluggable boot steps; the orchestrator
// resolves the partial order implied by their declared requirements and
// drives them through a start/stop/terminate protocol with defined
// semantics for partial-failure shutdown and idempotent re-entry. Services
// come up and go down in a reproducible order without each one knowing
// about the others.
//
// # Architecture
//
// The module is organized as small cooperating packages:
//
//   - component: blueprint metadata, the process-wide registry namespaces
//     claim from, and the Step / StartStop capability contracts with their
//     embeddable defaults
//   - graph: the dependency graph resolver (topological order with
//     deterministic tie-breaking, cycle errors naming the participants)
//   - boot: the Namespace lifecycle state machine, the shutdown signal,
//     and the stop-time network-timeout override
//   - config: worker configuration and the process-wide default network
//     I/O timeout with its override/restore discipline
//   - metric: Prometheus metrics for boot orchestration, with an HTTP
//     server exposing them
//   - natsclient: a managed NATS connection for worker components
//   - errors: classified error handling shared by all of the above
//
// # Usage
//
// Component packages register blueprints; a host builds a namespace and
// drives it:
//
//	ns := boot.New("worker", boot.WithModules(RegisterSteps))
//	if err := ns.Apply(worker, nil); err != nil {
//		return err
//	}
//	if err := ns.Start(ctx, worker); err != nil {
//		return err
//	}
//	// later, from a signal handler:
//	ns.Stop(ctx, worker)
//	// any number of waiters:
//	ns.Join(ctx)
//
// See cmd/worker for a complete reference host.
//
// # What this module is not
//
// The orchestrator does not implement the services it starts and provides
// no distributed coordination; all sequencing is local to one process's
// component set.
package bootsteps
