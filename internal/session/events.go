package session

import "github.com/voxbridge-app/voxbridge/pkg/types"

// EventType enumerates session notifications.
type EventType int

const (
	// EventStarted: the session became active.
	EventStarted EventType = iota

	// EventStopped: the session was stopped.
	EventStopped

	// EventUtterance: an utterance was created or changed status. The event
	// carries a snapshot of the utterance at that moment.
	EventUtterance

	// EventTurnChanged: the active speaker flipped.
	EventTurnChanged
)

// String implements [fmt.Stringer].
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventUtterance:
		return "utterance"
	case EventTurnChanged:
		return "turn_changed"
	default:
		return "unknown"
	}
}

// Event is one session notification.
type Event struct {
	Type EventType

	// Utterance is set for EventUtterance events. It is a copy; mutating it
	// has no effect on session state.
	Utterance *types.Utterance

	// Speaker is set for EventTurnChanged events and names the new active
	// speaker.
	Speaker types.Participant
}
