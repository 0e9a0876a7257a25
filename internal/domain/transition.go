package domain

import "time"

// TransitionKind is the direction of an online/offline boundary crossing.
type TransitionKind string

const (
	WentDown TransitionKind = "went_down"
	CameUp   TransitionKind = "came_up"
)

// StateTransition is emitted when a server strictly crosses the online/offline
// boundary between two consecutive cycles.
type StateTransition struct {
	ServerID   string
	ServerName string
	Kind       TransitionKind
	From       State
	To         State
	At         time.Time
}

// DetectTransition compares the previous and current state of a server.
// It returns false when there is no previous state or no boundary crossing.
func DetectTransition(prev State, hasPrev bool, cur State) (TransitionKind, bool) {
	if !hasPrev {
		return "", false
	}
	switch {
	case prev.Online() && !cur.Online():
		return WentDown, true
	case !prev.Online() && cur.Online():
		return CameUp, true
	default:
		return "", false
	}
}
