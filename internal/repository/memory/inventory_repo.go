package memory

import (
	"context"
	"sync"

	"github.com/NordCoder/netpanel/internal/domain/inventory"
)

var _ inventory.Repo = (*InventoryRepo)(nil)

type InventoryRepo struct {
	mu    sync.RWMutex
	items []inventory.Item
}

func NewInventoryRepo(items ...inventory.Item) *InventoryRepo {
	return &InventoryRepo{items: items}
}

func (r *InventoryRepo) Add(it inventory.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.ID == 0 {
		it.ID = int64(len(r.items) + 1)
	}
	r.items = append(r.items, it)
}

func (r *InventoryRepo) List(_ context.Context, limit, offset int) ([]*inventory.Item, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.items)
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 || offset >= total {
		return []*inventory.Item{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*inventory.Item, 0, end-offset)
	for i := offset; i < end; i++ {
		it := r.items[i]
		out = append(out, &it)
	}
	return out, total, nil
}
