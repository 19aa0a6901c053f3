package main

import (
	config "github.com/NordCoder/netpanel/internal/config/panel-api"
	"github.com/NordCoder/netpanel/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
}
