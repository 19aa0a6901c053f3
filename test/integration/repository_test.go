//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/domain/outbox"
	pg "github.com/NordCoder/netpanel/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgres_NotificationAndOutboxShareTx(t *testing.T) {
	c := LoadCfg()
	ctx := context.Background()
	db, err := pg.NewDB(ctx, pg.Config{DSN: c.DBDSN, MaxConns: 4, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewNotificationRepo(db)
	box := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, zap.NewNop())

	n := &notification.Notification{Title: "it tx " + UniqueSuffix(), Body: "b"}
	key := uuid.NewString()
	err = tx.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, n); err != nil {
			return err
		}
		return box.Enqueue(ctx, outbox.Message{IdempotencyKey: key, Kind: outbox.KindNotificationEvent, Data: []byte(`{}`)})
	})
	require.NoError(t, err)
	require.NotZero(t, n.ID)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Title, got.Title)

	rolled := &notification.Notification{Title: "it rollback " + UniqueSuffix(), Body: "b"}
	err = tx.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, rolled); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	_, err = repo.GetByID(ctx, rolled.ID)
	assert.ErrorIs(t, err, notification.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, n.ID))
}

func TestPostgres_ListVisibleSeesOwnTx(t *testing.T) {
	c := LoadCfg()
	ctx := context.Background()
	db, err := pg.NewDB(ctx, pg.Config{DSN: c.DBDSN, MaxConns: 4, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewNotificationRepo(db)
	tx := pg.NewTransactor(db, zap.NewNop())

	n := &notification.Notification{Title: "it visible " + UniqueSuffix(), Body: "b"}
	err = tx.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, n); err != nil {
			return err
		}
		list, err := repo.ListVisible(ctx, 0)
		if err != nil {
			return err
		}
		found := false
		for _, got := range list {
			found = found || got.ID == n.ID
		}
		assert.True(t, found, "row created in the tx is listed inside it")
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestPostgres_ModifyLocksRow(t *testing.T) {
	c := LoadCfg()
	ctx := context.Background()
	db, err := pg.NewDB(ctx, pg.Config{DSN: c.DBDSN, MaxConns: 4, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewNotificationRepo(db)
	n := &notification.Notification{Title: "it modify " + UniqueSuffix(), Body: "b"}
	require.NoError(t, repo.Create(ctx, n))
	defer func() { _ = repo.Delete(ctx, n.ID) }()

	var wg sync.WaitGroup
	for _, apply := range []func(*notification.Notification){
		func(x *notification.Notification) { x.Read = true },
		func(x *notification.Notification) { x.Sticky = true },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Modify(ctx, n.ID, func(x *notification.Notification) bool {
				time.Sleep(50 * time.Millisecond)
				apply(x)
				return true
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.True(t, got.Sticky)

	_, err = repo.Modify(ctx, -1, func(*notification.Notification) bool { return true })
	assert.ErrorIs(t, err, notification.ErrNotFound)
}
