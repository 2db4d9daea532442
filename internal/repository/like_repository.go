package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

type LikeRepository interface {
	// Create 幂等点赞；created=false 表示已赞过
	Create(ctx context.Context, userID int64, targetType string, targetID int64) (created bool, err error)
	Delete(ctx context.Context, userID int64, targetType string, targetID int64) (removed bool, err error)
	Exists(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := &model.Like{UserID: userID, TargetType: targetType, TargetID: targetID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return bumpLikeCount(tx, targetType, targetID, "+ 1", "")
	})
	return created, err
}

func (r *likeRepository) Delete(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return bumpLikeCount(tx, targetType, targetID, "- 1", " AND like_count > 0")
	})
	return removed, err
}

func bumpLikeCount(tx *gorm.DB, targetType string, targetID int64, delta, guard string) error {
	switch targetType {
	case model.LikeTargetPost:
		return tx.Model(&model.Post{}).Where("id = ?"+guard, targetID).
			UpdateColumn("like_count", gorm.Expr("like_count "+delta)).Error
	case model.LikeTargetComment:
		return tx.Model(&model.Comment{}).Where("id = ?"+guard, targetID).
			UpdateColumn("like_count", gorm.Expr("like_count "+delta)).Error
	}
	return nil
}

func (r *likeRepository) Exists(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
