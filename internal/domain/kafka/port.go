package kafka

import (
	"context"

	"github.com/NordCoder/netpanel/internal/domain/notification"
)

type NotificationEvents interface {
	PublishNotificationEvent(ctx context.Context, ev notification.Event) error
}
