package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/netpanel/internal/config/alert-ingest"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/outbox"
	"github.com/NordCoder/netpanel/internal/repository/kafka"
	pg "github.com/NordCoder/netpanel/internal/repository/postgres"
	ingest "github.com/NordCoder/netpanel/internal/services/alert-ingest"
	notificationsvc "github.com/NordCoder/netpanel/internal/services/panel-api/notification"
	"go.uber.org/zap"
)

// wiring builds the same notification use case panel-api serves, so alerts
// land in the same table and outbox.
func wiring(db *pg.DB, cons *kafka.Consumer, l *zap.Logger) *ingest.Controller {
	uc := notificationsvc.NewUsecase(
		pg.NewNotificationRepo(db),
		outbox.NewSink(pg.NewOutboxRepo(db)),
		pg.NewTransactor(db, l),
		notification.SystemClock{},
	)
	return &ingest.Controller{Log: l, Sub: cons, UC: ingest.NewHandler(uc, l)}
}

func main() {
	configPath := flag.String("config", "config/alert-ingest.yaml", "path to the yaml config")
	flag.Parse()

	// init
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting alert-ingest",
		zap.Any("kafka_in", cfg.In),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	} else {
		defer func() { _ = otelCloser.Shutdown(context.Background()) }()
	}

	// db
	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Ping, l)

	// kafka
	cons := kafka.BootstrapConsumer(rootCtx, cfg.In.AsConsumerConfig(), l).WithLogger(l)
	defer func() { _ = cons.Close() }()
	l.Info("kafka consumer initialized",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("topic", cfg.In.Topic),
	)

	// start
	ctrl := wiring(db, cons, l)
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("controller error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
