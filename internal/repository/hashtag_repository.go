package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

type HashtagRepository interface {
	// GetByTag 按归一化标签查；不存在返回 (nil, nil)
	GetByTag(ctx context.Context, normalized string) (*model.Hashtag, error)
	// Trending 按 post_count 倒序取前 limit 个
	Trending(ctx context.Context, limit int) ([]model.Hashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

func NewHashtagRepository(db *gorm.DB) HashtagRepository { return &hashtagRepository{db: db} }

func (r *hashtagRepository) GetByTag(ctx context.Context, normalized string) (*model.Hashtag, error) {
	var h model.Hashtag
	err := r.db.WithContext(ctx).Where("tag_normalized = ?", normalized).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hashtagRepository) Trending(ctx context.Context, limit int) ([]model.Hashtag, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var tags []model.Hashtag
	err := r.db.WithContext(ctx).
		Where("post_count > 0").
		Order("post_count DESC, id ASC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}
