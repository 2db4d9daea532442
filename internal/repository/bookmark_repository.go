package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

type BookmarkRepository interface {
	Create(ctx context.Context, userID, postID int64) (created bool, err error)
	Delete(ctx context.Context, userID, postID int64) (removed bool, err error)
	// ListByUser 按收藏时间倒序，join 帖子并排除已删
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.BookmarkedPost, int64, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository { return &bookmarkRepository{db: db} }

func (r *bookmarkRepository) Create(ctx context.Context, userID, postID int64) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b := &model.Bookmark{UserID: userID, PostID: postID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(b)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1")).Error
	})
	return created, err
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, postID int64) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&model.Post{}).Where("id = ? AND bookmark_count > 0", postID).
			UpdateColumn("bookmark_count", gorm.Expr("bookmark_count - 1")).Error
	})
	return removed, err
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.BookmarkedPost, int64, error) {
	var rows []model.BookmarkedPost
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, b.created_at AS bookmarked_at").
		Joins("INNER JOIN bookmarks b ON b.post_id = posts.id").
		Where("b.user_id = ? AND posts.deleted_at IS NULL", userID).
		Order("b.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).
		Table("bookmarks b").
		Joins("INNER JOIN posts p ON b.post_id = p.id").
		Where("b.user_id = ? AND p.deleted_at IS NULL", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
