package model

import "time"

// Post 内容主体；deleted_at 软删，liveness 判定见 repository
type Post struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	AuthorID         int64      `json:"author_id" gorm:"index:idx_post_author;not null"`
	Content          string     `json:"content" gorm:"type:text;not null"`
	MediaURLs        []string   `json:"media_urls" gorm:"serializer:json;type:text"`
	MediaType        string     `json:"media_type" gorm:"type:varchar(16);default:text"`
	Hashtags         []string   `json:"hashtags" gorm:"serializer:json;type:text"`
	Mentions         []int64    `json:"mentions" gorm:"serializer:json;type:text"`
	Visibility       string     `json:"visibility" gorm:"type:varchar(16);index"`
	IsPinned         bool       `json:"is_pinned"`
	IsSensitive      bool       `json:"is_sensitive"`
	ModerationStatus string     `json:"moderation_status" gorm:"type:varchar(16);index"`
	LikeCount        int64      `json:"like_count"`
	CommentCount     int64      `json:"comment_count"`
	RepostCount      int64      `json:"repost_count"`
	ViewCount        int64      `json:"view_count"`
	ShareCount       int64      `json:"share_count"`
	BookmarkCount    int64      `json:"bookmark_count"`
	CreatedAt        time.Time  `json:"created_at" gorm:"index:idx_post_created"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at" gorm:"index"`
}

func (Post) TableName() string { return "posts" }

// Visibility / ModerationStatus 取值
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"

	ModerationApproved = "approved"
	ModerationPending  = "pending"
	ModerationRejected = "rejected"
)
