package main

import (
	"context"

	config "github.com/NordCoder/netpanel/internal/config/panel-api"
	domainkafka "github.com/NordCoder/netpanel/internal/domain/kafka"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/obs/retry"
	"github.com/NordCoder/netpanel/internal/outbox"
	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	"go.uber.org/zap"
)

// logEvents stands in for kafka when it is disabled; events are only logged.
type logEvents struct{ log *zap.Logger }

func (e logEvents) PublishNotificationEvent(_ context.Context, ev notification.Event) error {
	e.log.Info("notification event",
		zap.String("kind", string(ev.Kind)),
		zap.Int64("notification_id", ev.Notification.ID),
	)
	return nil
}

func initOutbox(ctx context.Context, cfg *config.Config, st *storage, logger *zap.Logger) (*outbox.Runner, func()) {
	var (
		pub     domainkafka.NotificationEvents = logEvents{log: logger.With(zap.String("component", "events"))}
		closeFn                                = func() {}
	)
	if cfg.Kafka.Enable {
		prod := kafkax.BootstrapProducer(ctx, cfg.Kafka.Brokers, kafkax.TopicSpec{
			Name:              cfg.Kafka.Topic,
			NumPartitions:     cfg.Kafka.Partitions,
			ReplicationFactor: cfg.Kafka.ReplicationFactor,
		}, logger)
		pub = kafkax.NewNotificationEventsKafka(prod)
		closeFn = func() { _ = prod.Close() }
		logger.Info("kafka producer initialized",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	dispatch := outbox.MakeGlobalOutboxHandler(pub, retry.DefaultKafkaPolicy(logger))
	return outbox.NewOutboxRunner(logger, st.outbox, dispatch, cfg.Outbox), closeFn
}
