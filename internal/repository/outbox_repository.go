package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, row *model.Outbox) error
	// ClaimPending 取一批 pending 并置为 processing；Postgres 下用
	// FOR UPDATE SKIP LOCKED 避免多 relay 抢占同一批
	ClaimPending(ctx context.Context, limit int) ([]model.Outbox, error)
	MarkDone(ctx context.Context, ids []string) error
	Requeue(ctx context.Context, ids []string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) Enqueue(ctx context.Context, row *model.Outbox) error {
	row.Status = model.OutboxPending
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]model.Outbox, error) {
	var batch []model.Outbox
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := `
			SELECT * FROM outbox
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT ?`
		if tx.Dialector.Name() == "postgres" {
			q += " FOR UPDATE SKIP LOCKED"
		}
		if err := tx.Raw(q, limit).Scan(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).Where("id IN ?", ids).
			Update("status", model.OutboxProcessing).Error
	})
	return batch, err
}

func (r *outboxRepository) MarkDone(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Outbox{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": model.OutboxDone, "processed_at": now}).Error
}

func (r *outboxRepository) Requeue(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Outbox{}).Where("id IN ?", ids).
		Update("status", model.OutboxPending).Error
}
