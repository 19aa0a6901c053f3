package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var _ notification.Transactor = (*Transactor)(nil)

type Transactor struct {
	db     *DB
	logger *zap.Logger
}

func NewTransactor(db *DB, logger *zap.Logger) *Transactor {
	return &Transactor{
		db:     db,
		logger: logger.With(zap.String("component", "postgres.transactor")),
	}
}

// WithTx runs fn inside a transaction. A transaction already carried by ctx
// is reused and left for the outer call to finish.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) (txErr error) {
	if _, err := extractTx(ctx); err == nil {
		return fn(ctx)
	}

	tx, err := t.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	ctxWithTx := context.WithValue(ctx, txInjector{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if txErr != nil {
			if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				t.logger.Error("rollback", zap.Error(err))
			}
			return
		}
		if err := tx.Commit(ctx); err != nil {
			t.logger.Error("commit", zap.Error(err))
			txErr = fmt.Errorf("commit: %w", err)
		}
	}()

	return fn(ctxWithTx)
}

type txInjector struct{}

var ErrTxNotFound = errors.New("tx not found in context")

func extractTx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txInjector{}).(pgx.Tx)
	if !ok {
		return nil, ErrTxNotFound
	}
	return tx, nil
}

type execQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (db *DB) execQueryer(ctx context.Context) execQueryer {
	if tx, err := extractTx(ctx); err == nil && tx != nil {
		return tx
	}
	return db.Pool
}
