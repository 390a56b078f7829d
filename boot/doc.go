// Package boot implements the namespace lifecycle state machine that
// sequences a host process's components through bring-up and tear-down.
//
// A Namespace claims the blueprints registered under its name, resolves
// the partial order implied by their declared requirements (with an
// optional "last" pin), binds each blueprint against the host object, and
// drives the included components through the start/stop/close/terminate
// protocol:
//
//	ns := boot.New("worker", boot.WithModules(steps.Register))
//	if err := ns.Apply(worker, nil); err != nil { ... }
//	if err := ns.Start(ctx, worker); err != nil { ... }
//	...
//	go ns.Stop(ctx, worker) // from a signal handler
//	ns.Join(ctx)
//
// Start order is exactly the resolved topological order; stop and
// terminate sweep in exact reverse. A start failure leaves the namespace
// in the run state with an accurate count of completed components, and a
// later Stop skips per-component stop calls when that count shows startup
// never finished. The shutdown signal fires exactly once, when the
// namespace reaches its terminal state, and any number of goroutines may
// wait on it through Join or ShutdownComplete.
package boot
