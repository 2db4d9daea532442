package event

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/logger"
)

// Sink 外部总线边界；投递失败由 relay 重新入队
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// LogSink 仅打日志的 Sink，未接入总线时的缺省实现
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, e Event) error {
	logger.Info("event delivered", zap.String("kind", e.Kind), zap.Any("payload", e.Payload))
	return nil
}

// OutboxRelay 轮询 outbox，claim 一批 pending 投递到 Sink
type OutboxRelay struct {
	outbox       repository.OutboxRepository
	sink         Sink
	workers      int
	claimLimit   int
	pollInterval time.Duration
}

func NewOutboxRelay(outbox repository.OutboxRepository, sink Sink, workers, claimLimit int, pollInterval time.Duration) *OutboxRelay {
	if workers <= 0 {
		workers = 2
	}
	if claimLimit <= 0 {
		claimLimit = 128
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &OutboxRelay{outbox: outbox, sink: sink, workers: workers, claimLimit: claimLimit, pollInterval: pollInterval}
}

// Start 启动轮询；返回停止函数
func (r *OutboxRelay) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < r.workers; i++ {
		go r.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (r *OutboxRelay) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := r.ProcessOnce(context.Background()); err != nil {
				logger.Warn("outbox relay pass failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claim 一批并投递；成功 done，失败 requeue
func (r *OutboxRelay) ProcessOnce(ctx context.Context) error {
	batch, err := r.outbox.ClaimPending(ctx, r.claimLimit)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	done := make([]string, 0, len(batch))
	failed := make([]string, 0)
	for _, row := range batch {
		e := Event{Kind: row.Kind, OccurredAt: row.CreatedAt}
		if row.Payload != "" {
			if uErr := json.Unmarshal([]byte(row.Payload), &e.Payload); uErr != nil {
				logger.Warn("outbox payload corrupt, dropping", zap.String("id", row.ID), zap.Error(uErr))
				done = append(done, row.ID)
				continue
			}
		}
		if dErr := r.sink.Deliver(ctx, e); dErr != nil {
			failed = append(failed, row.ID)
			continue
		}
		done = append(done, row.ID)
	}

	if err := r.outbox.MarkDone(ctx, done); err != nil {
		return err
	}
	return r.outbox.Requeue(ctx, failed)
}
