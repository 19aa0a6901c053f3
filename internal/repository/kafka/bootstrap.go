package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	_ = EnsureTopic(ctx, cfg.Brokers, TopicSpec{
		Name:              cfg.Topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}, logger)

	return NewConsumer(cfg)
}

// BootstrapProducer makes a best effort to create spec's topic before
// returning a producer for it.
func BootstrapProducer(ctx context.Context, brokers []string, spec TopicSpec, logger *zap.Logger) *Producer {
	if err := EnsureTopic(ctx, brokers, spec, logger); err != nil {
		logger.Warn("ensure topic", zap.String("topic", spec.Name), zap.Error(err))
	}

	return NewProducer(brokers, spec.Name).WithLogger(logger)
}
