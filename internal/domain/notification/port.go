package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	// ListVisible returns unread or sticky notifications, sticky first, newest first.
	ListVisible(ctx context.Context, limit int) ([]*Notification, error)
	// Modify applies fn to the stored notification while holding it exclusively
	// and saves it when fn returns true. The notification as it stands after
	// fn is returned either way.
	Modify(ctx context.Context, id int64, fn func(n *Notification) bool) (*Notification, error)
	Delete(ctx context.Context, id int64) error
}

// EventSink records change events, inside the caller's transaction when there is one.
type EventSink interface {
	Emit(ctx context.Context, ev Event) error
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
