package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

func DefaultKafkaPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "outbox_publish",
		Attempts: 6,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("outbox retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("outbox retries exhausted", zap.Error(err))
			}
		},
	}
}

// BadgeRefreshPolicy gives a failed badge fetch exactly one quiet second try.
func BadgeRefreshPolicy(backoff time.Duration) Policy {
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return Policy{
		Name:     "badge_refresh",
		Attempts: 2,
		Backoff:  Constant(backoff),
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
	}
}
