package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/netpanel/internal/obs"
	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	"go.uber.org/zap"
)

// Creates the notification and alert topics; run once before the services.
func main() {
	brokers := strings.Split(env("KAFKA_BROKERS", "kafka:9092"), ",")
	topics := strings.Split(env("KAFKA_TOPICS", "netpanel.notifications,netpanel.alerts"), ",")
	partitions := envInt("KAFKA_PARTITIONS", 3)
	rf := envInt("KAFKA_RF", 1)

	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "kafka-init"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		spec := kafkax.TopicSpec{
			Name:              t,
			NumPartitions:     partitions,
			ReplicationFactor: rf,
			MaxWait:           30 * time.Second,
		}
		if err := kafkax.EnsureTopic(ctx, brokers, spec, l); err != nil {
			l.Fatal("ensure topic", zap.String("topic", t), zap.Error(err))
		}
		l.Info("topic ready", zap.String("topic", t))
	}
	l.Info("kafka-init ok")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			return n
		}
	}
	return def
}
