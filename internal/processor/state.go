// SPDX-License-Identifier: MIT
package processor

// State is the processor lifecycle state. Exactly one authoritative copy
// lives inside the Processor and is mutated only under the control lock.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StatePaused
	StateStopping
	StateStopped
	StateError
)

// String returns the state name in log-friendly form.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateInitializing:
		return "INITIALIZING"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// startable reports whether a capture session may begin from s.
func (s State) startable() bool {
	return s == StateIdle || s == StateStopped
}

// active reports whether worker goroutines are alive in s.
func (s State) active() bool {
	return s == StateRunning || s == StatePaused
}
