package notification

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionRead     Action = "read"
	ActionUnread   Action = "unread"
	ActionSticky   Action = "sticky"
	ActionUnsticky Action = "unsticky"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionRead, ActionUnread, ActionSticky, ActionUnsticky:
		return a, nil
	case "":
		return ActionRead, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Apply mutates n according to a and reports whether anything changed.
func (a Action) Apply(n *Notification) bool {
	switch a {
	case ActionRead:
		if n.Read {
			return false
		}
		n.Read = true
	case ActionUnread:
		if !n.Read {
			return false
		}
		n.Read = false
	case ActionSticky:
		if n.Sticky {
			return false
		}
		n.Sticky = true
	case ActionUnsticky:
		if !n.Sticky {
			return false
		}
		n.Sticky = false
	default:
		return false
	}
	return true
}

// ReloadsPage reports whether a successful transition re-orders the whole list.
func (a Action) ReloadsPage() bool {
	return a == ActionSticky || a == ActionUnsticky
}

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is published whenever a notification changes.
type Event struct {
	Kind         EventKind    `json:"kind"`
	Action       Action       `json:"action,omitempty"`
	Notification Notification `json:"notification"`
	At           time.Time    `json:"at"`
}
