// Package component defines the blueprint metadata and capability contracts
// for boot steps: the declarative Registration, the process-wide registry
// namespaces claim their blueprints from, and the Step / StartStop
// interfaces with their embeddable defaults.
//
// A blueprint describes one unit of lifecycle behavior before it is bound
// to any host. Component packages register their blueprints explicitly:
//
//	func Register(r *component.Registry) error {
//		return r.Register(component.Registration{
//			Name:     "worker.connection",
//			Factory:  newConnectionStep,
//		})
//	}
//
// The boot package claims registered blueprints, resolves their dependency
// order, binds them against a host object, and drives the resulting steps
// through the start/stop/close/terminate protocol.
package component
