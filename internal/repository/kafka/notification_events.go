package kafka

import (
	"context"

	domainkafka "github.com/NordCoder/netpanel/internal/domain/kafka"
	"github.com/NordCoder/netpanel/internal/domain/notification"
)

type NotificationEventsKafka struct {
	p *Producer
}

func NewNotificationEventsKafka(p *Producer) *NotificationEventsKafka {
	return &NotificationEventsKafka{p: p}
}

var _ domainkafka.NotificationEvents = (*NotificationEventsKafka)(nil)

func (e *NotificationEventsKafka) PublishNotificationEvent(ctx context.Context, ev notification.Event) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.Notification.ID), ev)
}
