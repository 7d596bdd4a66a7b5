package crossfade

import "github.com/osa030/vibebox/internal/domain/track"

// EventType represents a scheduler event type.
type EventType int

const (
	EventTrackLoaded         EventType = iota // A channel finished loading a track
	EventTrackStarted                         // PlayTrack started a track
	EventTransitionStarted                    // A transition began
	EventTransitionCompleted                  // The incoming track became current
	EventPaused                               // Current channel paused
	EventResumed                              // Current channel resumed
	EventStopped                              // Both channels stopped
	EventError                                // Loading or playback failed
	EventSettingsUpdated                      // Transition settings changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "trackLoaded"
	case EventTrackStarted:
		return "trackStarted"
	case EventTransitionStarted:
		return "transitionStarted"
	case EventTransitionCompleted:
		return "transitionCompleted"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventStopped:
		return "stopped"
	case EventError:
		return "error"
	case EventSettingsUpdated:
		return "settingsUpdated"
	default:
		return "unknown"
	}
}

// Event represents a scheduler event.
type Event struct {
	Type  EventType
	Track *track.Track // Track concerned (nil for some events)
	// Preloaded is set on EventTrackLoaded when the standby channel was loaded.
	Preloaded bool
	Err       error     // Set on EventError
	Settings  *Settings // Set on EventSettingsUpdated
	State     State     // Scheduler state after the event
}
