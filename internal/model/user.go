package model

import "time"

// User 用户主体；计数字段为冗余值，随写路径在同事务内维护
type User struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	WalletAddress     string     `json:"wallet_address" gorm:"type:varchar(64);uniqueIndex;not null"`
	Username          *string    `json:"username" gorm:"type:varchar(32);uniqueIndex"`
	DisplayName       *string    `json:"display_name" gorm:"type:varchar(64)"`
	Bio               *string    `json:"bio" gorm:"type:text"`
	AvatarURL         *string    `json:"avatar_url" gorm:"type:varchar(512)"`
	CoverURL          *string    `json:"cover_url" gorm:"type:varchar(512)"`
	Email             *string    `json:"email" gorm:"type:varchar(128)"`
	Verified          bool       `json:"verified"`
	VerificationLevel int        `json:"verification_level"`
	ReputationScore   int64      `json:"reputation_score"`
	FollowerCount     int64      `json:"follower_count"`
	FollowingCount    int64      `json:"following_count"`
	PostCount         int64      `json:"post_count"`
	IsActive          bool       `json:"is_active" gorm:"default:true"`
	IsBanned          bool       `json:"is_banned"`
	BannedUntil       *time.Time `json:"banned_until"`
	LastLoginAt       *time.Time `json:"last_login_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }
