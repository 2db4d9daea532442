package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
)

var dbSeq atomic.Int64

func newOutboxRepo(t *testing.T) (repository.OutboxRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:event%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Outbox{}))
	return repository.NewOutboxRepository(db), db
}

// captureSink 记录投递到的事件；failKinds 中的 kind 投递失败
type captureSink struct {
	mu        sync.Mutex
	delivered []Event
	failKinds map[string]bool
}

func (s *captureSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKinds[e.Kind] {
		return errors.New("sink unavailable")
	}
	s.delivered = append(s.delivered, e)
	return nil
}

func (s *captureSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.delivered))
	for i, e := range s.delivered {
		out[i] = e.Kind
	}
	return out
}

func TestPublisherPersistsToOutbox(t *testing.T) {
	repo, db := newOutboxRepo(t)

	pub := NewAsyncPublisher(repo, 16)
	stop := pub.Start(1)

	pub.Publish(Event{
		Kind:    KindPostCreated,
		Payload: map[string]interface{}{"post_id": float64(1)},
	})

	require.Eventually(t, func() bool {
		var cnt int64
		return db.Model(&model.Outbox{}).Count(&cnt).Error == nil && cnt == 1
	}, 2*time.Second, 20*time.Millisecond)
	require.NoError(t, stop(context.Background()))

	var row model.Outbox
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, KindPostCreated, row.Kind)
	require.Equal(t, model.OutboxPending, row.Status)
	require.NotEmpty(t, row.ID)
	require.JSONEq(t, `{"post_id":1}`, row.Payload)
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	repo, _ := newOutboxRepo(t)

	// 不启动 worker，队列只有 1 个位置
	pub := NewAsyncPublisher(repo, 1)
	pub.Publish(Event{Kind: KindLikeCreated})
	pub.Publish(Event{Kind: KindLikeCreated})

	// 第二条被丢弃，调用方不被阻塞
	require.Equal(t, 1, pub.QueueLen())
}

func TestRelayDeliversAndMarksDone(t *testing.T) {
	repo, db := newOutboxRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, &model.Outbox{
		ID:      "row-1",
		Kind:    KindFollowCreated,
		Payload: `{"follower_id":1,"following_id":2}`,
	}))

	sink := &captureSink{}
	relay := NewOutboxRelay(repo, sink, 1, 10, time.Minute)
	require.NoError(t, relay.ProcessOnce(ctx))

	require.Equal(t, []string{KindFollowCreated}, sink.kinds())
	require.Equal(t, float64(1), sink.delivered[0].Payload["follower_id"])

	var row model.Outbox
	require.NoError(t, db.First(&row, "id = ?", "row-1").Error)
	require.Equal(t, model.OutboxDone, row.Status)
	require.NotNil(t, row.ProcessedAt)

	// 空轮不报错
	require.NoError(t, relay.ProcessOnce(ctx))
	require.Len(t, sink.kinds(), 1)
}

func TestRelayRequeuesFailedDelivery(t *testing.T) {
	repo, db := newOutboxRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, &model.Outbox{ID: "ok", Kind: KindPostCreated, Payload: `{}`}))
	require.NoError(t, repo.Enqueue(ctx, &model.Outbox{ID: "bad", Kind: KindPostDeleted, Payload: `{}`}))

	sink := &captureSink{failKinds: map[string]bool{KindPostDeleted: true}}
	relay := NewOutboxRelay(repo, sink, 1, 10, time.Minute)
	require.NoError(t, relay.ProcessOnce(ctx))

	var ok, bad model.Outbox
	require.NoError(t, db.First(&ok, "id = ?", "ok").Error)
	require.NoError(t, db.First(&bad, "id = ?", "bad").Error)
	require.Equal(t, model.OutboxDone, ok.Status)
	// 失败行回到 pending，下一轮重投
	require.Equal(t, model.OutboxPending, bad.Status)

	sink.failKinds = nil
	require.NoError(t, relay.ProcessOnce(ctx))
	require.NoError(t, db.First(&bad, "id = ?", "bad").Error)
	require.Equal(t, model.OutboxDone, bad.Status)
}

func TestRelayDropsCorruptPayload(t *testing.T) {
	repo, db := newOutboxRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, &model.Outbox{ID: "junk", Kind: KindUserRegistered, Payload: `{not json`}))

	sink := &captureSink{}
	relay := NewOutboxRelay(repo, sink, 1, 10, time.Minute)
	require.NoError(t, relay.ProcessOnce(ctx))

	// 坏载荷直接出队，不无限重试
	require.Empty(t, sink.kinds())
	var row model.Outbox
	require.NoError(t, db.First(&row, "id = ?", "junk").Error)
	require.Equal(t, model.OutboxDone, row.Status)
}

func TestClaimPendingSkipsProcessing(t *testing.T) {
	repo, _ := newOutboxRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, &model.Outbox{ID: "a", Kind: KindPostCreated, Payload: `{}`}))

	first, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 已 claim 的行不会被第二个 relay 再次取到
	second, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, second)
}
