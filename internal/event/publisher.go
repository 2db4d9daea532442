package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/logger"
)

// AsyncPublisher 本地异步发布器：事件先进内存队列，worker 落 outbox 表。
// 队列满时丢弃并告警，绝不阻塞调用方。
type AsyncPublisher struct {
	outbox repository.OutboxRepository
	ch     chan Event
}

func NewAsyncPublisher(outbox repository.OutboxRepository, queueSize int) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &AsyncPublisher{outbox: outbox, ch: make(chan Event, queueSize)}
}

// Start 启动若干 worker；返回停止函数（等待队列自然排空一小段时间）
func (p *AsyncPublisher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case e := <-p.ch:
					p.persist(e)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(p.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (p *AsyncPublisher) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	select {
	case p.ch <- e:
	default:
		logger.Warn("event queue full, drop", zap.String("kind", e.Kind))
	}
}

func (p *AsyncPublisher) persist(e Event) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		logger.Warn("event payload marshal failed", zap.String("kind", e.Kind), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := &model.Outbox{
		ID:        uuid.New().String(),
		Kind:      e.Kind,
		Payload:   string(payload),
		CreatedAt: e.OccurredAt,
	}
	if err := p.outbox.Enqueue(ctx, row); err != nil {
		logger.Warn("outbox enqueue failed", zap.String("kind", e.Kind), zap.Error(err))
	}
}

// QueueLen 当前队列长度（采样值）
func (p *AsyncPublisher) QueueLen() int { return len(p.ch) }
