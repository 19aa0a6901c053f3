package notification

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrUnknownAction = errors.New("unknown notification action")
)

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Source    string    `json:"source,omitempty"`
	Sticky    bool      `json:"sticky"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Visible reports whether n belongs in the badge list.
func (n *Notification) Visible() bool { return !n.Read || n.Sticky }

// Draft is the user-supplied part of a new notification.
type Draft struct {
	Title  string `json:"title" validate:"required,max=255"`
	Body   string `json:"body" validate:"required"`
	Sticky bool   `json:"sticky"`
	Source string `json:"source,omitempty" validate:"max=64"`
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
