// Package lifecycle holds the shared service lifecycle state machine.
// Valid transitions are Stopped → Starting → Running → Stopping → Stopped.
package lifecycle

// State is the lifecycle state of a background service.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}
