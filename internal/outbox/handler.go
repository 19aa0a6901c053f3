package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainkafka "github.com/NordCoder/netpanel/internal/domain/kafka"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/domain/outbox"
	"github.com/NordCoder/netpanel/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	h = WrapKindHandler(h, pol)
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle "+kind)
		defer span.End()

		start := time.Now()
		err := h(ctx, data)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

func MakeGlobalOutboxHandler(pub domainkafka.NotificationEvents, pol retry.Policy) outbox.GlobalHandler {
	notificationEvent := instrument("notification_event", func(ctx context.Context, data []byte) error {
		var ev notification.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("unmarshal notification event: %w", err)
		}
		return pub.PublishNotificationEvent(ctx, ev)
	}, pol)

	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		switch kind {
		case outbox.KindNotificationEvent:
			return notificationEvent, nil
		default:
			return nil, fmt.Errorf("unsupported outbox kind: %d", kind)
		}
	}
}
