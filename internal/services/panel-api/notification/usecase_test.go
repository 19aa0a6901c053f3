package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/NordCoder/netpanel/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type sinkRecorder struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (s *sinkRecorder) Emit(_ context.Context, ev notification.Event) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func seed() []notification.Notification {
	return []notification.Notification{
		{ID: 1, Title: "old unread", Body: "b", CreatedAt: t0.Add(-2 * time.Hour)},
		{ID: 2, Title: "read", Body: "b", Read: true, CreatedAt: t0.Add(-time.Hour)},
		{ID: 3, Title: "sticky read", Body: "b", Read: true, Sticky: true, CreatedAt: t0.Add(-3 * time.Hour)},
		{ID: 4, Title: "new unread", Body: "b", CreatedAt: t0},
	}
}

func newUsecase(t *testing.T) (*Usecase, *memory.NotificationRepo, *sinkRecorder) {
	t.Helper()
	repo := memory.NewNotificationRepo(memory.FixedClock(t0)).WithData(seed()...)
	sink := &sinkRecorder{}
	return NewUsecase(repo, sink, memory.Transactor{}, memory.FixedClock(t0)), repo, sink
}

func ids(ns []*notification.Notification) []int64 {
	out := make([]int64, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestUsecase_ListVisibleOrdering(t *testing.T) {
	uc, _, _ := newUsecase(t)

	got, err := uc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 1}, ids(got), "sticky first, then newest")

	got, err = uc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(got))
}

func TestUsecase_TransitionRead(t *testing.T) {
	uc, _, sink := newUsecase(t)

	n, err := uc.Transition(context.Background(), 4, "read")
	require.NoError(t, err)
	assert.True(t, n.Read)

	list, err := uc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(list))

	require.Len(t, sink.events, 1)
	assert.Equal(t, notification.EventUpdated, sink.events[0].Kind)
	assert.Equal(t, notification.ActionRead, sink.events[0].Action)
	assert.Equal(t, int64(4), sink.events[0].Notification.ID)
}

func TestUsecase_TransitionEmptyActionMeansRead(t *testing.T) {
	uc, repo, _ := newUsecase(t)

	_, err := uc.Transition(context.Background(), 1, "")
	require.NoError(t, err)
	n, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestUsecase_TransitionNoopEmitsNothing(t *testing.T) {
	uc, _, sink := newUsecase(t)

	n, err := uc.Transition(context.Background(), 2, "read")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Empty(t, sink.events)
}

func TestUsecase_TransitionStickyKeepsReadItemVisible(t *testing.T) {
	uc, _, _ := newUsecase(t)

	_, err := uc.Transition(context.Background(), 2, "sticky")
	require.NoError(t, err)
	list, err := uc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(list))

	_, err = uc.Transition(context.Background(), 3, "unsticky")
	require.NoError(t, err)
	list, err = uc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 1}, ids(list))
}

func TestUsecase_TransitionErrors(t *testing.T) {
	uc, _, _ := newUsecase(t)

	_, err := uc.Transition(context.Background(), 1, "archive")
	assert.ErrorIs(t, err, notification.ErrUnknownAction)

	_, err = uc.Transition(context.Background(), 99, "read")
	assert.ErrorIs(t, err, notification.ErrNotFound)
}

func TestUsecase_TransitionSinkFailure(t *testing.T) {
	uc, _, sink := newUsecase(t)
	sink.err = errors.New("outbox down")

	_, err := uc.Transition(context.Background(), 1, "read")
	require.Error(t, err)
	assert.ErrorContains(t, err, "outbox down")
}

// slowRepo holds every change open for a while so concurrent transitions on
// one notification overlap.
type slowRepo struct {
	*memory.NotificationRepo
	hold time.Duration
}

func (r *slowRepo) Modify(ctx context.Context, id int64, fn func(n *notification.Notification) bool) (*notification.Notification, error) {
	return r.NotificationRepo.Modify(ctx, id, func(n *notification.Notification) bool {
		time.Sleep(r.hold)
		return fn(n)
	})
}

func TestUsecase_ConcurrentTransitionsKeepBothChanges(t *testing.T) {
	repo := &slowRepo{NotificationRepo: memory.NewNotificationRepo(memory.FixedClock(t0)).WithData(seed()...), hold: 20 * time.Millisecond}
	sink := &sinkRecorder{}
	uc := NewUsecase(repo, sink, memory.Transactor{}, memory.FixedClock(t0))

	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, action := range []string{"read", "sticky"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.Transition(context.Background(), 1, action)
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	n, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.True(t, n.Sticky)
	assert.Len(t, sink.events, 2)
}

func TestUsecase_Create(t *testing.T) {
	uc, repo, sink := newUsecase(t)

	n, err := uc.Create(context.Background(), notification.Draft{Title: "  Upgrade  ", Body: "Tonight", Sticky: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n.ID)
	assert.Equal(t, "Upgrade", n.Title)
	assert.True(t, n.Sticky)
	assert.False(t, n.Read)
	assert.Equal(t, t0, n.CreatedAt)

	stored, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Tonight", stored.Body)

	require.Len(t, sink.events, 1)
	assert.Equal(t, notification.EventCreated, sink.events[0].Kind)
}

func TestUsecase_CreateValidation(t *testing.T) {
	uc, _, sink := newUsecase(t)

	_, err := uc.Create(context.Background(), notification.Draft{Title: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"title": "The title field is required.",
		"body":  "The body field is required.",
	}, verr.Fields)

	_, err = uc.Create(context.Background(), notification.Draft{Title: strings.Repeat("x", 256), Body: "b"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"title": "The title may not be greater than 255 characters."}, verr.Fields)

	assert.Empty(t, sink.events)
}

func TestUsecase_Delete(t *testing.T) {
	uc, repo, sink := newUsecase(t)

	require.NoError(t, uc.Delete(context.Background(), 1))
	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, notification.ErrNotFound)
	require.Len(t, sink.events, 1)
	assert.Equal(t, notification.EventDeleted, sink.events[0].Kind)
	assert.Equal(t, "old unread", sink.events[0].Notification.Title)

	assert.ErrorIs(t, uc.Delete(context.Background(), 1), notification.ErrNotFound)
}
