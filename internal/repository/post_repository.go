package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

// liveness 判定：未删除 + 公开 + 审核通过
const postLiveCond = "posts.deleted_at IS NULL AND posts.visibility = 'public' AND posts.moderation_status = 'approved'"

type PostRepository interface {
	// Create 同事务落地帖子、话题 upsert、作者 post_count
	Create(ctx context.Context, p *model.Post) error
	// GetByID 仅返回未删除的帖子；不存在返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// Update 更新后返回整行；行不存在或已删除返回 (nil, nil)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Post, error)
	// SoftDelete 仅作者本人可删；deleted=false 表示无可删行
	SoftDelete(ctx context.Context, id, authorID int64) (deleted bool, err error)
	IncrementViewCount(ctx context.Context, id int64) error
	ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]model.Post, int64, error)
	// Feed 关注流：join follows，liveness 过滤，created_at DESC, id DESC
	Feed(ctx context.Context, viewerID int64, offset, limit int) ([]model.Post, int64, error)
	ListByHashtag(ctx context.Context, normalized string, offset, limit int) ([]model.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

// NormalizeTag 与原始数据一致：小写 + 去空白
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.Join(strings.Fields(tag), ""))
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for _, tag := range p.Hashtags {
			normalized := NormalizeTag(tag)
			if normalized == "" {
				continue
			}
			h := &model.Hashtag{Tag: tag, TagNormalized: normalized, PostCount: 1}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tag_normalized"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"post_count": gorm.Expr("hashtags.post_count + 1")}),
			}).Create(h).Error; err != nil {
				return err
			}
			var hashtagID int64
			if err := tx.Model(&model.Hashtag{}).Select("id").
				Where("tag_normalized = ?", normalized).Scan(&hashtagID).Error; err != nil {
				return err
			}
			link := &model.PostHashtag{PostID: p.ID, HashtagID: hashtagID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.User{}).Where("id = ?", p.AuthorID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
	})
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Post, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND deleted_at IS NULL", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id, authorID int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Post{}).
			Where("id = ? AND author_id = ? AND deleted_at IS NULL", id, authorID).
			UpdateColumn("deleted_at", gorm.Expr("CURRENT_TIMESTAMP"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Model(&model.User{}).Where("id = ? AND post_count > 0", authorID).
			UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error
	})
	return deleted, err
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND deleted_at IS NULL", authorID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).Model(&model.Post{}).
		Where("author_id = ? AND deleted_at IS NULL", authorID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Feed(ctx context.Context, viewerID int64, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*").
		Joins("INNER JOIN follows f ON f.following_id = posts.author_id").
		Where("f.follower_id = ? AND "+postLiveCond, viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).
		Table("posts").
		Joins("INNER JOIN follows f ON f.following_id = posts.author_id").
		Where("f.follower_id = ? AND "+postLiveCond, viewerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListByHashtag(ctx context.Context, normalized string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*").
		Joins("INNER JOIN post_hashtags ph ON ph.post_id = posts.id").
		Joins("INNER JOIN hashtags h ON h.id = ph.hashtag_id").
		Where("h.tag_normalized = ? AND "+postLiveCond, normalized).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).
		Table("posts").
		Joins("INNER JOIN post_hashtags ph ON ph.post_id = posts.id").
		Joins("INNER JOIN hashtags h ON h.id = ph.hashtag_id").
		Where("h.tag_normalized = ? AND "+postLiveCond, normalized).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
