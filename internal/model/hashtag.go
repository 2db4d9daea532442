package model

import "time"

// Hashtag 话题标签；tag_normalized 去空格小写后唯一
type Hashtag struct {
	ID            int64  `gorm:"primaryKey"`
	Tag           string `gorm:"type:varchar(128);not null"`
	TagNormalized string `gorm:"type:varchar(128);uniqueIndex;not null"`
	PostCount     int64
	CreatedAt     time.Time
}

func (Hashtag) TableName() string { return "hashtags" }

// PostHashtag 帖子与话题的关联
type PostHashtag struct {
	ID        int64 `gorm:"primaryKey"`
	PostID    int64 `gorm:"index:idx_post_hashtag_pair,unique;not null"`
	HashtagID int64 `gorm:"index:idx_post_hashtag_pair,unique;index:idx_hashtag_posts;not null"`
	CreatedAt time.Time
}

func (PostHashtag) TableName() string { return "post_hashtags" }
