// Package panel drives the notification widgets of the web panel: the unread
// badge, the per-notification action controls and the create form. Rendering is
// left to the View implementations; this package owns request flow and state.
package panel

import (
	"context"
	"encoding/json"
)

// API is the subset of apiclient.Client the widgets need.
type API interface {
	Do(ctx context.Context, method, path string, payload any) (json.RawMessage, error)
	URL(path string) string
}

// MenuItem is one entry of the badge dropdown.
type MenuItem struct {
	Href    string
	Tooltip string
	Label   string
}

type BadgeView interface {
	SetCount(n int)
	ClearList()
	AppendItem(item MenuItem)
	// SetStale marks the rendered list as out of date after a failed refresh.
	SetStale(stale bool)
}

type Toaster interface {
	Info(msg string)
	Error(msg string)
}

type Page interface {
	Reload()
	// Remove takes the element of the given notification off the page.
	Remove(id int64)
}

// Control is the clickable element that triggered a state transition.
type Control interface {
	SetDisabled(disabled bool)
}

type FormView interface {
	ClearErrors()
	SetFieldError(field, message string)
}
