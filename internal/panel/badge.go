package panel

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/obs/retry"
	"go.uber.org/zap"
)

const DefaultBadgeLimit = 5

// Summary is the part of a notification the badge shows.
type Summary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type listResponse struct {
	Data []Summary `json:"data"`
}

type BadgeUpdater struct {
	api   API
	view  BadgeView
	limit int
	retry retry.Policy
	log   *zap.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
}

type BadgeOption func(*BadgeUpdater)

// WithBadgeLimit caps how many notifications are listed under the badge.
func WithBadgeLimit(n int) BadgeOption {
	return func(u *BadgeUpdater) {
		if n > 0 {
			u.limit = n
		}
	}
}

func WithRefreshPolicy(p retry.Policy) BadgeOption {
	return func(u *BadgeUpdater) { u.retry = p }
}

func WithBadgeLogger(l *zap.Logger) BadgeOption {
	return func(u *BadgeUpdater) {
		if l != nil {
			u.log = l
		}
	}
}

func NewBadgeUpdater(api API, view BadgeView, opts ...BadgeOption) *BadgeUpdater {
	u := &BadgeUpdater{
		api:   api,
		view:  view,
		limit: DefaultBadgeLimit,
		retry: retry.BadgeRefreshPolicy(500 * time.Millisecond),
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(u)
	}
	u.log = u.log.With(zap.String("component", "panel.badge"))
	return u
}

// Refresh fetches the unread list and redraws the badge from scratch: the
// count is the full list length and at most limit items are listed. A failed
// fetch is retried once; if that fails too the view is marked stale and keeps
// its previous content. A refresh that was overtaken by a newer one does not
// touch the view.
func (u *BadgeUpdater) Refresh(ctx context.Context) error {
	u.mu.Lock()
	u.issued++
	seq := u.issued
	u.mu.Unlock()

	var list listResponse
	err := retry.Do(ctx, func() error {
		raw, err := u.api.Do(ctx, http.MethodGet, "/api/notifications", nil)
		if err != nil {
			return err
		}
		list = listResponse{}
		if len(raw) == 0 {
			return nil
		}
		if err := decodeInto(raw, &list); err != nil {
			return err
		}
		return nil
	}, u.retry)

	u.mu.Lock()
	defer u.mu.Unlock()
	if seq < u.applied {
		return nil
	}
	u.applied = seq

	if err != nil {
		obs.WithTrace(ctx, u.log).Warn("badge refresh failed", zap.Error(err))
		u.view.SetStale(true)
		return fmt.Errorf("refresh badge: %w", err)
	}

	u.view.SetCount(len(list.Data))
	u.view.ClearList()
	n := min(u.limit, len(list.Data))
	for _, s := range list.Data[:n] {
		u.view.AppendItem(MenuItem{
			Href:    u.api.URL("/notifications/" + strconv.FormatInt(s.ID, 10)),
			Tooltip: s.Body,
			Label:   s.Title,
		})
	}
	u.view.SetStale(false)
	return nil
}
