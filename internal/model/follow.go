package model

import "time"

// Follow 关注关系（A 关注 B）
type Follow struct {
	ID          int64 `gorm:"primaryKey"`
	FollowerID  int64 `gorm:"index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	FollowingID int64 `gorm:"not null;index:idx_follow_pair,unique;index:idx_follow_following"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (follower_id, following_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
