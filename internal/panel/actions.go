package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/NordCoder/netpanel/internal/obs"
	"go.uber.org/zap"
)

var ErrInFlight = errors.New("a transition for this notification is already in flight")

type Action string

const (
	ActionRead     Action = "read"
	ActionUnread   Action = "unread"
	ActionSticky   Action = "sticky"
	ActionUnsticky Action = "unsticky"
)

// Command asks for notification TargetID to be moved by Action. An empty
// Action means ActionRead.
type Command struct {
	TargetID int64
	Action   Action
}

type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Outcome is what a transition settled on.
type Outcome struct {
	State State
	Err   error
}

type ActionHandler struct {
	api   API
	page  Page
	toast Toaster
	badge *BadgeUpdater
	log   *zap.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewActionHandler(api API, page Page, toast Toaster, badge *BadgeUpdater, log *zap.Logger) *ActionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActionHandler{
		api:      api,
		page:     page,
		toast:    toast,
		badge:    badge,
		log:      log.With(zap.String("component", "panel.actions")),
		inFlight: make(map[int64]struct{}),
	}
}

// Handle disables ctl and starts the PATCH for cmd before returning. The
// returned channel yields exactly one Outcome once the request settles. While
// a transition for the same notification is pending Handle returns ErrInFlight
// and leaves ctl alone.
func (h *ActionHandler) Handle(ctx context.Context, cmd Command, ctl Control) (<-chan Outcome, error) {
	if cmd.Action == "" {
		cmd.Action = ActionRead
	}

	h.mu.Lock()
	if _, busy := h.inFlight[cmd.TargetID]; busy {
		h.mu.Unlock()
		return nil, ErrInFlight
	}
	h.inFlight[cmd.TargetID] = struct{}{}
	h.mu.Unlock()

	ctl.SetDisabled(true)

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res := h.run(ctx, cmd, ctl)

		h.mu.Lock()
		delete(h.inFlight, cmd.TargetID)
		h.mu.Unlock()

		out <- res
	}()
	return out, nil
}

// Pending reports whether a transition for id is in flight.
func (h *ActionHandler) Pending(id int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.inFlight[id]
	return ok
}

func (h *ActionHandler) run(ctx context.Context, cmd Command, ctl Control) Outcome {
	path := fmt.Sprintf("/notifications/%d/%s", cmd.TargetID, url.PathEscape(string(cmd.Action)))
	log := obs.WithTrace(ctx, h.log).With(zap.Int64("notification_id", cmd.TargetID), zap.String("action", string(cmd.Action)))

	if _, err := h.api.Do(ctx, http.MethodPatch, path, nil); err != nil {
		log.Warn("notification transition failed", zap.Error(err))
		ctl.SetDisabled(false)
		h.toast.Error(fmt.Sprintf("Couldn't mark this notification as %s", cmd.Action))
		return Outcome{State: StateFailed, Err: err}
	}

	h.toast.Info(fmt.Sprintf("Notification has been marked as %s", cmd.Action))
	if cmd.Action == ActionSticky || cmd.Action == ActionUnsticky {
		h.page.Reload()
	} else {
		h.page.Remove(cmd.TargetID)
	}
	if h.badge != nil {
		// the badge logs and marks itself stale on failure
		_ = h.badge.Refresh(ctx)
	}
	log.Debug("notification transition done")
	return Outcome{State: StateSucceeded}
}

func decodeInto(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
