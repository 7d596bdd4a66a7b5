package crossfade

// State represents the scheduler state.
type State int

const (
	StateIdle          State = iota // Nothing loaded or stopped
	StatePlaying                    // Current channel is playing
	StatePaused                     // Current channel is paused
	StateTransitioning              // A transition owns both channels
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}
