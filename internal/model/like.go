package model

import "time"

// Like 点赞；target 可为 post 或 comment
type Like struct {
	ID         int64  `gorm:"primaryKey"`
	UserID     int64  `gorm:"index:idx_like_triple,unique;not null"`
	TargetType string `gorm:"type:varchar(16);index:idx_like_triple,unique;not null"`
	TargetID   int64  `gorm:"index:idx_like_triple,unique;index:idx_like_target;not null"`
	// idx_like_triple = (user_id, target_type, target_id)
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }

const (
	LikeTargetPost    = "post"
	LikeTargetComment = "comment"
)
