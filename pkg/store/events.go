package store

import "github.com/vango-dev/toastkit/pkg/toast"

// EventKind identifies a store mutation.
type EventKind uint8

const (
	EventShown EventKind = iota
	EventUpdated
	EventDismissed
	EventCleared
	EventPaused
	EventResumed
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	switch k {
	case EventShown:
		return "shown"
	case EventUpdated:
		return "updated"
	case EventDismissed:
		return "dismissed"
	case EventCleared:
		return "cleared"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Reason records why a toast left the store.
type Reason string

const (
	ReasonManual       Reason = "manual"
	ReasonTimeout      Reason = "timeout"
	ReasonKeyboard     Reason = "keyboard"
	ReasonGesture      Reason = "gesture"
	ReasonEvicted      Reason = "evicted"
	ReasonCleared      Reason = "cleared"
	ReasonProgrammatic Reason = "programmatic"
)

// Event describes one mutation. Toast is the affected toast for every kind
// except EventCleared, which carries Count instead.
type Event struct {
	Kind   EventKind
	Toast  toast.Toast
	Reason Reason
	Count  int
}

// Listener receives store events.
type Listener func(Event)
