package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/alert"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/obs"
	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	notificationsvc "github.com/NordCoder/netpanel/internal/services/panel-api/notification"
	"github.com/NordCoder/netpanel/internal/units"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const Source = "alert-ingest"

var (
	mIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_ingest_notifications_total",
		Help: "Alerts turned into notifications.",
	}, []string{"state"})
	mRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alert_ingest_rejected_total",
		Help: "Alerts dropped as unusable.",
	})
)

type Creator interface {
	Create(ctx context.Context, d notification.Draft) (*notification.Notification, error)
}

type Handler struct {
	uc  Creator
	log *zap.Logger
}

func NewHandler(uc Creator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{uc: uc, log: log.With(zap.String("component", "alert-ingest"))}
}

// Handle creates one notification for a. Alerts that can never become a
// notification are reported as kafka poison so the consumer moves past them.
func (h *Handler) Handle(ctx context.Context, _ []byte, a *alert.Alert) error {
	log := obs.WithTrace(ctx, h.log)
	if a.Device == "" || a.Check == "" || a.State == "" {
		mRejected.Inc()
		return fmt.Errorf("%w: alert without device, check or state", kafkax.ErrPoison)
	}

	n, err := h.uc.Create(ctx, Draft(a))
	if err != nil {
		var verr *notificationsvc.ValidationError
		if errors.As(err, &verr) {
			mRejected.Inc()
			return fmt.Errorf("%w: %v", kafkax.ErrPoison, verr)
		}
		return fmt.Errorf("create notification for %s/%s: %w", a.Device, a.Check, err)
	}

	mIngested.WithLabelValues(string(a.State)).Inc()
	log.Info("alert ingested",
		zap.Int64("notification_id", n.ID),
		zap.String("device", a.Device),
		zap.String("check", a.Check),
		zap.String("state", string(a.State)))
	return nil
}

// Draft renders a as a notification. Down alerts stay pinned until someone
// unsticks them.
func Draft(a *alert.Alert) notification.Draft {
	var body strings.Builder
	if a.Message != "" {
		body.WriteString(a.Message)
		body.WriteString("\n")
	}
	if a.InBps > 0 || a.OutBps > 0 {
		fmt.Fprintf(&body, "Traffic in %s, out %s\n",
			orZero(units.FormatBitsPS(a.InBps, units.DefaultDecimals, units.DefaultBase)),
			orZero(units.FormatBitsPS(a.OutBps, units.DefaultDecimals, units.DefaultBase)))
	}
	if !a.At.IsZero() {
		fmt.Fprintf(&body, "Since %s", a.At.UTC().Format(time.RFC3339))
	}

	return notification.Draft{
		Title:  fmt.Sprintf("%s %s is %s", a.Device, a.Check, a.State),
		Body:   strings.TrimSpace(body.String()),
		Sticky: a.State == alert.StateDown,
		Source: Source,
	}
}

func orZero(s string) string {
	if s == "" {
		return "0bps"
	}
	return s
}
