// Package memory keeps repositories in process memory for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepo)(nil)

type NotificationRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]notification.Notification
	clock  notification.Clock
}

func NewNotificationRepo(clock notification.Clock) *NotificationRepo {
	if clock == nil {
		clock = notification.SystemClock{}
	}
	return &NotificationRepo{
		items: make(map[int64]notification.Notification),
		clock: clock,
	}
}

// WithData seeds the repo; IDs of the given notifications are kept.
func (r *NotificationRepo) WithData(ns ...notification.Notification) *NotificationRepo {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range ns {
		if n.ID > r.nextID {
			r.nextID = n.ID
		}
		r.items[n.ID] = n
	}
	return r
}

func (r *NotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.clock.Now()
	}
	n.UpdatedAt = n.CreatedAt
	r.items[n.ID] = *n
	return nil
}

func (r *NotificationRepo) GetByID(_ context.Context, id int64) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	return &n, nil
}

func (r *NotificationRepo) ListVisible(_ context.Context, limit int) ([]*notification.Notification, error) {
	r.mu.RLock()
	out := make([]*notification.Notification, 0, len(r.items))
	for _, n := range r.items {
		if !n.Visible() {
			continue
		}
		nc := n
		out = append(out, &nc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Sticky != b.Sticky {
			return a.Sticky
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Modify runs fn under the write lock, so concurrent changes to one
// notification never interleave.
func (r *NotificationRepo) Modify(_ context.Context, id int64, fn func(n *notification.Notification) bool) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	if !fn(&n) {
		return &n, nil
	}
	n.ID = id
	n.UpdatedAt = r.clock.Now()
	r.items[id] = n
	out := n
	return &out, nil
}

func (r *NotificationRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return notification.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Transactor runs fn directly; memory repositories have no rollback.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// FixedClock is a notification.Clock frozen at t.
func FixedClock(t time.Time) notification.Clock { return fixedClock(t) }
