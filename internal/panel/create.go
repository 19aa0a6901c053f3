package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/NordCoder/netpanel/internal/apiclient"
	"github.com/NordCoder/netpanel/internal/obs"
	"go.uber.org/zap"
)

const DefaultReloadDelay = time.Second

// ValidationError carries the per-field messages of a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AfterFunc schedules f after d; time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func())

type Creator struct {
	api   API
	page  Page
	toast Toaster
	form  FormView
	badge *BadgeUpdater
	log   *zap.Logger

	ReloadDelay time.Duration
	After       AfterFunc
}

func NewCreator(api API, page Page, toast Toaster, form FormView, badge *BadgeUpdater, log *zap.Logger) *Creator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Creator{
		api:         api,
		page:        page,
		toast:       toast,
		form:        form,
		badge:       badge,
		log:         log.With(zap.String("component", "panel.create")),
		ReloadDelay: DefaultReloadDelay,
		After:       func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Submit clears previous field errors and PUTs fields to /notifications.
// On success one info toast is shown and a page reload is scheduled after
// ReloadDelay. A 422 puts each message next to its field and returns a
// *ValidationError. Anything else shows an error toast.
func (c *Creator) Submit(ctx context.Context, fields url.Values) error {
	c.form.ClearErrors()
	log := obs.WithTrace(ctx, c.log)

	_, err := c.api.Do(ctx, http.MethodPut, "/notifications", fields)
	if err == nil {
		c.toast.Info("Notification has been created")
		c.After(c.ReloadDelay, c.page.Reload)
		if c.badge != nil {
			_ = c.badge.Refresh(ctx)
		}
		log.Debug("notification created")
		return nil
	}

	var he *apiclient.HTTPError
	if errors.As(err, &he) && he.Status == http.StatusUnprocessableEntity {
		fieldErrs, perr := parseFieldErrors(he.Body)
		if perr == nil && len(fieldErrs) > 0 {
			keys := make([]string, 0, len(fieldErrs))
			for k := range fieldErrs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				c.form.SetFieldError(k, fieldErrs[k])
			}
			log.Debug("notification rejected", zap.Strings("fields", keys))
			return &ValidationError{Fields: fieldErrs}
		}
		log.Warn("unreadable validation response", zap.Error(perr))
	}

	log.Warn("notification create failed", zap.Error(err))
	c.toast.Error("Couldn't create this notification")
	return fmt.Errorf("create notification: %w", err)
}

// parseFieldErrors accepts {"field": "msg"} and {"field": ["msg", ...]}.
// A top-level "errors" object is unwrapped first; without one, the
// envelope "message" key is not a field.
func parseFieldErrors(body []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode field errors: %w", err)
	}
	if nested, ok := raw["errors"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(nested, &inner) == nil {
			raw = inner
		}
	} else {
		delete(raw, "message")
	}

	out := make(map[string]string, len(raw))
	for field, v := range raw {
		var s string
		if json.Unmarshal(v, &s) == nil {
			out[field] = s
			continue
		}
		var list []string
		if json.Unmarshal(v, &list) == nil {
			out[field] = strings.Join(list, " ")
		}
	}
	return out, nil
}
