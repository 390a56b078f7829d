package boot

// State represents the lifecycle state of a namespace. Transitions only
// move forward: unset -> run -> close -> terminate.
type State int

const (
	// StateUnset indicates the namespace has not been started
	StateUnset State = iota
	// StateRun indicates the namespace is starting or running
	StateRun
	// StateClose indicates shutdown is sweeping through the components
	StateClose
	// StateTerminate is the terminal state
	StateTerminate
)

// String returns a string representation of the namespace state
func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateRun:
		return "run"
	case StateClose:
		return "close"
	case StateTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}
