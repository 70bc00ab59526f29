package export

import "time"

// State is the session lifecycle position. Idle is initial; completed,
// cancelled, and failed are terminal.
type State string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StateExporting State = "exporting"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

var allStates = []State{
	StateIdle,
	StatePreparing,
	StateExporting,
	StateCompleted,
	StateCancelled,
	StateFailed,
}

// AllStates returns the session states in lifecycle order.
func AllStates() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// Active reports whether an export is in flight.
func (s State) Active() bool {
	return s == StatePreparing || s == StateExporting
}

// Progress is one sample forwarded to the caller's callback. Fraction is
// within [0,1]. EstimatedRemaining is 0 when no estimate is available yet.
type Progress struct {
	State              State
	Fraction           float64
	EstimatedRemaining time.Duration
}

// ProgressFunc receives progress samples and exactly one terminal sample
// per export call. It runs on the session's poll task, never on the encode
// path, so a slow callback cannot stall the backend.
type ProgressFunc func(Progress)
