package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/outbox"
)

var _ outbox.Repository = (*OutboxRepo)(nil)

type OutboxRepo struct {
	mu   sync.Mutex
	msgs map[string]*outbox.Message
	now  func() time.Time
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{
		msgs: make(map[string]*outbox.Message),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *OutboxRepo) Enqueue(_ context.Context, m outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.msgs[m.IdempotencyKey]; ok {
		return nil
	}
	now := r.now()
	m.Status = outbox.StatusCreated
	m.CreatedAt, m.UpdatedAt = now, now
	r.msgs[m.IdempotencyKey] = &m
	return nil
}

func (r *OutboxRepo) PickBatch(_ context.Context, batch int, inProgressTTL time.Duration) ([]outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cand := make([]*outbox.Message, 0, len(r.msgs))
	for _, m := range r.msgs {
		switch {
		case m.Status == outbox.StatusCreated:
		case m.Status == outbox.StatusInProgress && m.UpdatedAt.Before(now.Add(-inProgressTTL)):
		default:
			continue
		}
		cand = append(cand, m)
	}
	sort.Slice(cand, func(i, j int) bool { return cand[i].CreatedAt.Before(cand[j].CreatedAt) })
	if len(cand) > batch {
		cand = cand[:batch]
	}

	out := make([]outbox.Message, 0, len(cand))
	for _, m := range cand {
		m.Status = outbox.StatusInProgress
		m.UpdatedAt = now
		out = append(out, *m)
	}
	return out, nil
}

func (r *OutboxRepo) MarkSuccess(_ context.Context, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, k := range keys {
		if m, ok := r.msgs[k]; ok {
			m.Status = outbox.StatusSuccess
			m.UpdatedAt = now
		}
	}
	return nil
}

// Pending counts messages not yet marked successful.
func (r *OutboxRepo) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Status != outbox.StatusSuccess {
			n++
		}
	}
	return n
}
