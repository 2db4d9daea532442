package model

import "time"

// Bookmark 收藏；(user_id, post_id) 唯一
type Bookmark struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"index:idx_bookmark_pair,unique;not null"`
	PostID    int64 `gorm:"index:idx_bookmark_pair,unique;not null"`
	CreatedAt time.Time
}

func (Bookmark) TableName() string { return "bookmarks" }

// BookmarkedPost 收藏列表行：帖子 + 收藏时间
type BookmarkedPost struct {
	Post
	BookmarkedAt time.Time `json:"bookmarked_at"`
}
