package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/netpanel/internal/config/panel-api"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/outbox"
	"github.com/NordCoder/netpanel/internal/services/panel-api/auth"
	notificationsvc "github.com/NordCoder/netpanel/internal/services/panel-api/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config/panel-api.yaml", "path to the yaml config")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting panel-api",
		zap.String("env", cfg.App.Env),
		zap.String("ver", cfg.App.Version),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("title", cfg.Panel.Title),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Warn("otel init", zap.Error(err))
		otelShutdown = func(context.Context) error { return nil }
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	st, err := initStorage(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	defer st.close()

	runner, closeEvents := initOutbox(rootCtx, cfg, st, logger)
	defer closeEvents()

	uc := notificationsvc.NewUsecase(st.notifications, outbox.NewSink(st.outbox), st.tx, notification.SystemClock{})

	httpSrv, err := buildHTTPServer(cfg, logger, st, uc)
	if err != nil {
		logger.Fatal("build http", zap.Error(err))
	}
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, st.health, logger)

	if cfg.App.Env == "dev" && cfg.Auth.Enable {
		issueDevToken(cfg, logger)
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("outbox runner starting")
		return runner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal")
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		_ = ms.Shutdown(shCtx)
		return httpSrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("panel-api stopped", zap.Error(err))
	}
	time.Sleep(100 * time.Millisecond)
	logger.Info("bye")
}

// issueDevToken logs a bearer token so the panel can be tried locally.
func issueDevToken(cfg *config.Config, logger *zap.Logger) {
	secret := []byte(cfg.Auth.JWTSecret)
	token, err := auth.Issue(secret, "dev", cfg.Auth.DevTTL, time.Now())
	if err != nil {
		logger.Warn("dev token", zap.Error(err))
		return
	}
	logger.Info("dev token issued",
		zap.String("token", token),
		zap.String("csrf", auth.CSRFToken(secret, "dev")),
		zap.Duration("ttl", cfg.Auth.DevTTL),
	)
}
