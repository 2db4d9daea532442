package model

import "time"

// Comment 评论；parent_id 非空时为楼中楼回复
type Comment struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	PostID     int64      `json:"post_id" gorm:"index:idx_comment_post;not null"`
	AuthorID   int64      `json:"author_id" gorm:"index;not null"`
	ParentID   *int64     `json:"parent_id" gorm:"index"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	MediaURLs  []string   `json:"media_urls" gorm:"serializer:json;type:text"`
	Mentions   []int64    `json:"mentions" gorm:"serializer:json;type:text"`
	LikeCount  int64      `json:"like_count"`
	ReplyCount int64      `json:"reply_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at" gorm:"index"`
}

func (Comment) TableName() string { return "comments" }

// CommentWithAuthor 评论列表联查出的作者摘要
type CommentWithAuthor struct {
	Comment
	AuthorUsername    *string `json:"author_username"`
	AuthorDisplayName *string `json:"author_display_name"`
	AuthorAvatar      *string `json:"author_avatar"`
}
