package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/jackc/pgx/v5"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const (
	notifColumns = `id, title, body, source, sticky, is_read, created_at, updated_at`

	qNotifInsert = `
INSERT INTO notifications (title, body, source, sticky, is_read, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($6, now()))
RETURNING id, created_at, updated_at;
`
	qNotifByID = `
SELECT ` + notifColumns + `
FROM notifications
WHERE id = $1;
`
	qNotifByIDForUpdate = `
SELECT ` + notifColumns + `
FROM notifications
WHERE id = $1
FOR UPDATE;
`
	qNotifVisible = `
SELECT ` + notifColumns + `
FROM notifications
WHERE is_read = false OR sticky = true
ORDER BY sticky DESC, created_at DESC, id DESC
LIMIT $1;
`
	qNotifUpdate = `
UPDATE notifications
SET title = $2, body = $3, sticky = $4, is_read = $5, updated_at = now()
WHERE id = $1
RETURNING updated_at;
`
	qNotifDelete = `DELETE FROM notifications WHERE id = $1;`
)

func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.execQueryer(ctx).QueryRow(ctx, qNotifInsert,
		n.Title,
		n.Body,
		n.Source,
		n.Sticky,
		n.Read,
		nullTime(n.CreatedAt),
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepoImpl) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	n, err := scanNotification(r.db.execQueryer(ctx).QueryRow(ctx, qNotifByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("get notification %d: %w", id, err)
	}
	return n, nil
}

// ListVisible returns every visible notification when limit <= 0.
func (r *NotificationRepoImpl) ListVisible(ctx context.Context, limit int) ([]*notification.Notification, error) {
	// LIMIT NULL is no limit.
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qNotifVisible, limitArg)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Modify locks the row, lets fn change it and persists the result when fn
// reports a change. Without a transaction in ctx it opens its own.
func (r *NotificationRepoImpl) Modify(ctx context.Context, id int64, fn func(n *notification.Notification) bool) (*notification.Notification, error) {
	if _, err := extractTx(ctx); err != nil {
		var out *notification.Notification
		err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
			var err error
			out, err = r.modify(context.WithValue(ctx, txInjector{}, tx), id, fn)
			return err
		})
		return out, err
	}
	return r.modify(ctx, id, fn)
}

func (r *NotificationRepoImpl) modify(ctx context.Context, id int64, fn func(n *notification.Notification) bool) (*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	q := r.db.execQueryer(ctx)
	n, err := scanNotification(q.QueryRow(ctx, qNotifByIDForUpdate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("lock notification %d: %w", id, err)
	}
	if !fn(n) {
		return n, nil
	}

	if err := q.QueryRow(ctx, qNotifUpdate,
		n.ID, n.Title, n.Body, n.Sticky, n.Read,
	).Scan(&n.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update notification %d: %w", id, err)
	}
	return n, nil
}

func (r *NotificationRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qNotifDelete, id)
	if err != nil {
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	if err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Source, &n.Sticky, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
