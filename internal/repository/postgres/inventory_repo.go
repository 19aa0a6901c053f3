package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/netpanel/internal/domain/inventory"
)

var _ inventory.Repo = (*InventoryRepo)(nil)

type InventoryRepo struct{ db *DB }

func NewInventoryRepo(db *DB) *InventoryRepo { return &InventoryRepo{db: db} }

const (
	qInventoryCount = `SELECT count(*) FROM inventory;`
	qInventoryPage  = `
SELECT id, device_id, ent_index, description, class, name, model, serial
FROM inventory
ORDER BY device_id, ent_index, id
LIMIT $1 OFFSET $2;`
)

func (r *InventoryRepo) List(ctx context.Context, limit, offset int) ([]*inventory.Item, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.Pool.QueryRow(ctx, qInventoryCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, qInventoryPage, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	out := make([]*inventory.Item, 0, limit)
	for rows.Next() {
		var it inventory.Item
		if err := rows.Scan(&it.ID, &it.DeviceID, &it.Index, &it.Description, &it.Class, &it.Name, &it.Model, &it.Serial); err != nil {
			return nil, 0, fmt.Errorf("scan inventory: %w", err)
		}
		out = append(out, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return out, total, nil
}
