package postgres

import (
	"context"
	"time"
)

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Ping is the readiness probe used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.Pool.Ping(ctx)
}
