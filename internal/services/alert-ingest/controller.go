package ingest

import (
	"context"
	"errors"

	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	"go.uber.org/zap"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler
}

func (c *Controller) Run(ctx context.Context) error {
	err := c.Sub.Consume(ctx, kafkax.JSONHandler(c.UC.Handle))
	if err != nil && !errors.Is(err, context.Canceled) {
		c.Log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return nil
}
