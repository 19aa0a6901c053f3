package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/alert"
	"github.com/NordCoder/netpanel/internal/domain/notification"
	kafkax "github.com/NordCoder/netpanel/internal/repository/kafka"
	"github.com/NordCoder/netpanel/internal/repository/memory"
	notificationsvc "github.com/NordCoder/netpanel/internal/services/panel-api/notification"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var at = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestDraft(t *testing.T) {
	d := Draft(&alert.Alert{
		Device:  "core-sw1",
		Check:   "port Gi0/1",
		State:   alert.StateDown,
		InBps:   1_500_000,
		OutBps:  320_000,
		Message: "Link lost",
		At:      at,
	})

	assert.Equal(t, "core-sw1 port Gi0/1 is down", d.Title)
	assert.Equal(t, "Link lost\nTraffic in 1.5Mbps, out 320Kbps\nSince 2024-05-01T10:00:00Z", d.Body)
	assert.True(t, d.Sticky)
	assert.Equal(t, Source, d.Source)

	up := Draft(&alert.Alert{Device: "edge1", Check: "ping", State: alert.StateUp, InBps: 2_000})
	assert.Equal(t, "edge1 ping is up", up.Title)
	assert.Equal(t, "Traffic in 2Kbps, out 0bps", up.Body)
	assert.False(t, up.Sticky)
}

func newHandler(t *testing.T) (*Handler, *memory.NotificationRepo) {
	t.Helper()
	repo := memory.NewNotificationRepo(memory.FixedClock(at))
	uc := notificationsvc.NewUsecase(repo, nil, memory.Transactor{}, memory.FixedClock(at))
	return NewHandler(uc, nil), repo
}

func TestHandler_CreatesNotification(t *testing.T) {
	h, repo := newHandler(t)

	require.NoError(t, h.Handle(context.Background(), nil, &alert.Alert{
		Device: "core-sw1", Check: "ping", State: alert.StateDown, Message: "no reply", At: at,
	}))

	list, err := repo.ListVisible(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "core-sw1 ping is down", list[0].Title)
	assert.True(t, list[0].Sticky)
	assert.Equal(t, Source, list[0].Source)
}

func TestHandler_PoisonAlerts(t *testing.T) {
	h, _ := newHandler(t)

	err := h.Handle(context.Background(), nil, &alert.Alert{Device: "x"})
	assert.ErrorIs(t, err, kafkax.ErrPoison)

	// a title longer than 255 characters can never validate
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'd'
	}
	err = h.Handle(context.Background(), nil, &alert.Alert{Device: string(long), Check: "ping", State: alert.StateUp})
	assert.ErrorIs(t, err, kafkax.ErrPoison)
}

type failingCreator struct{}

func (failingCreator) Create(context.Context, notification.Draft) (*notification.Notification, error) {
	return nil, errors.New("db down")
}

func TestHandler_TransientFailureIsRetried(t *testing.T) {
	h := NewHandler(failingCreator{}, nil)
	err := h.Handle(context.Background(), nil, &alert.Alert{Device: "a", Check: "b", State: alert.StateUp})
	require.Error(t, err)
	assert.NotErrorIs(t, err, kafkax.ErrPoison)
}

type sliceReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	drained   chan struct{}
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	select {
	case r.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *sliceReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *sliceReader) Close() error { return nil }

func TestController_ConsumesAndCommits(t *testing.T) {
	h, repo := newHandler(t)
	reader := &sliceReader{
		drained: make(chan struct{}, 1),
		msgs: []kafka.Message{
			{Topic: "netpanel.alerts", Offset: 1, Value: []byte(`{"device":"r1","check":"bgp","state":"down","at":"2024-05-01T10:00:00Z"}`)},
			{Topic: "netpanel.alerts", Offset: 2, Value: []byte(`not json`)},
			{Topic: "netpanel.alerts", Offset: 3, Value: []byte(`{"device":"r2","check":"ping","state":"up"}`)},
		},
	}
	cons := kafkax.NewConsumerWithReader(reader, &kafkax.ConsumerConfig{Topic: "netpanel.alerts", Logger: zap.NewNop()})
	ctrl := &Controller{Log: zap.NewNop(), Sub: cons, UC: h}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	require.NoError(t, <-done)

	reader.mu.Lock()
	assert.Equal(t, []int64{1, 2, 3}, reader.committed, "poison messages are committed past")
	reader.mu.Unlock()

	list, err := repo.ListVisible(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
