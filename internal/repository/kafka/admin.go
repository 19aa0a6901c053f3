package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

// EnsureTopic creates the topic through the controller if it is missing and
// waits up to spec.MaxWait for every partition to have a leader.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	if spec.NumPartitions <= 0 {
		spec.NumPartitions = 1
	}
	if spec.ReplicationFactor <= 0 {
		spec.ReplicationFactor = 1
	}
	if spec.MaxWait <= 0 {
		spec.MaxWait = 5 * time.Second
	}
	log = log.With(zap.String("topic", spec.Name))

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("kafka dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Warn("kafka controller", zap.Error(err))
		return err
	}
	cc, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		log.Warn("kafka dial controller", zap.Error(err))
		return err
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		log.Warn("create topic", zap.Error(err))
		return err
	}

	return waitTopicReady(ctx, conn, spec, log)
}

func waitTopicReady(ctx context.Context, conn *kafka.Conn, spec TopicSpec, log *zap.Logger) error {
	backoff := 200 * time.Millisecond
	deadline := time.Now().Add(spec.MaxWait)
	for time.Now().Before(deadline) {
		ps, err := conn.ReadPartitions(spec.Name)
		if err == nil && len(ps) > 0 && allHaveLeader(ps) {
			log.Info("topic ready", zap.Int("partitions", len(ps)))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("topic %s not ready after %s", spec.Name, spec.MaxWait)
}

func allHaveLeader(parts []kafka.Partition) bool {
	for _, p := range parts {
		if p.Leader.ID == -1 {
			return false
		}
	}
	return true
}
