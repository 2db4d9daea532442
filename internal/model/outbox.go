package model

import "time"

// Outbox 事件外发盒；relay 取 pending 投递到外部总线
type Outbox struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Kind        string `gorm:"type:varchar(32);index;not null"`
	Payload     string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(16);index"` // pending, processing, done
	CreatedAt   time.Time `gorm:"index"`
	ProcessedAt *time.Time
}

func (Outbox) TableName() string { return "outbox" }

const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)
