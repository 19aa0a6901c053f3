package main

import (
	"context"

	config "github.com/NordCoder/netpanel/internal/config/panel-api"
	"github.com/NordCoder/netpanel/internal/domain/inventory"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/domain/outbox"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/repository/memory"
	pg "github.com/NordCoder/netpanel/internal/repository/postgres"
	"go.uber.org/zap"
)

type storage struct {
	notifications notification.Repo
	inventory     inventory.Repo
	outbox        outbox.Repository
	tx            notification.Transactor
	health        obs.HealthFunc
	close         func()
}

func initStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		db, err := pg.NewDB(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		logger.Info("db connected")
		return &storage{
			notifications: pg.NewNotificationRepo(db),
			inventory:     pg.NewInventoryRepo(db),
			outbox:        pg.NewOutboxRepo(db),
			tx:            pg.NewTransactor(db, logger),
			health:        db.Ping,
			close:         db.Close,
		}, nil
	}

	clk := notification.SystemClock{}
	repo := memory.NewNotificationRepo(clk)
	if cfg.Storage.Seed {
		now := clk.Now()
		repo.WithData(notification.Notification{
			ID:        1,
			Title:     "Welcome to " + cfg.Panel.Title,
			Body:      "Notifications stay here until you mark them as read.",
			Sticky:    true,
			Source:    "panel-api",
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	logger.Warn("using in-memory storage, data is lost on restart")
	return &storage{
		notifications: repo,
		inventory:     memory.NewInventoryRepo(),
		outbox:        memory.NewOutboxRepo(),
		tx:            memory.Transactor{},
		close:         func() {},
	}, nil
}
