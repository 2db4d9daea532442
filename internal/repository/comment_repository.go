package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

type CommentRepository interface {
	// Create 同事务维护 post.comment_count 与父评论 reply_count
	Create(ctx context.Context, c *model.Comment) error
	// ListByPost 顶层评论分页（parent_id IS NULL），带作者摘要
	ListByPost(ctx context.Context, postID int64, offset, limit int) ([]model.CommentWithAuthor, int64, error)
	ListReplies(ctx context.Context, commentID int64) ([]model.CommentWithAuthor, error)
	SoftDelete(ctx context.Context, id, authorID int64) (deleted bool, err error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", c.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		if c.ParentID != nil {
			return tx.Model(&model.Comment{}).Where("id = ?", *c.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
		}
		return nil
	})
}

const commentAuthorSelect = "comments.*, u.username AS author_username, u.display_name AS author_display_name, u.avatar_url AS author_avatar"

func (r *commentRepository) ListByPost(ctx context.Context, postID int64, offset, limit int) ([]model.CommentWithAuthor, int64, error) {
	var rows []model.CommentWithAuthor
	err := r.db.WithContext(ctx).
		Table("comments").
		Select(commentAuthorSelect).
		Joins("INNER JOIN users u ON comments.author_id = u.id").
		Where("comments.post_id = ? AND comments.deleted_at IS NULL AND comments.parent_id IS NULL", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND deleted_at IS NULL AND parent_id IS NULL", postID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID int64) ([]model.CommentWithAuthor, error) {
	var rows []model.CommentWithAuthor
	err := r.db.WithContext(ctx).
		Table("comments").
		Select(commentAuthorSelect).
		Joins("INNER JOIN users u ON comments.author_id = u.id").
		Where("comments.parent_id = ? AND comments.deleted_at IS NULL", commentID).
		Order("comments.created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *commentRepository) SoftDelete(ctx context.Context, id, authorID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND author_id = ? AND deleted_at IS NULL", id, authorID).
		UpdateColumn("deleted_at", gorm.Expr("CURRENT_TIMESTAMP"))
	return res.RowsAffected > 0, res.Error
}
