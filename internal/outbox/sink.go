package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/domain/outbox"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var _ notification.EventSink = (*Sink)(nil)

// Sink stores notification events in the outbox so they are published only
// after the surrounding transaction commits.
type Sink struct {
	repo  outbox.Repository
	newID func() string
}

func NewSink(repo outbox.Repository) *Sink {
	return &Sink{repo: repo, newID: uuid.NewString}
}

func (s *Sink) Emit(ctx context.Context, ev notification.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return s.repo.Enqueue(ctx, outbox.Message{
		IdempotencyKey: s.newID(),
		Kind:           outbox.KindNotificationEvent,
		Data:           data,
		Traceparent:    carrier.Get("traceparent"),
		Tracestate:     carrier.Get("tracestate"),
		Baggage:        carrier.Get("baggage"),
	})
}
