package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

// UserStats 聚合统计
type UserStats struct {
	FollowerCount         int64 `json:"follower_count"`
	FollowingCount        int64 `json:"following_count"`
	PostCount             int64 `json:"post_count"`
	ReputationScore       int64 `json:"reputation_score"`
	TotalLikesReceived    int64 `json:"total_likes_received"`
	TotalCommentsReceived int64 `json:"total_comments_received"`
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	// GetByID 仅返回 is_active=true 的用户；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByWallet(ctx context.Context, wallet string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Update 返回更新后的整行；行不存在返回 (nil, nil)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	TouchLastLogin(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*UserStats, error)
	// ListFollowers 按关注时间倒序分页，带 total
	ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.User, int64, error)
	ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	u.IsActive = true
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByWallet(ctx context.Context, wallet string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("wallet_address = ? AND is_active = ?", wallet, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.User, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *userRepository) Stats(ctx context.Context, id int64) (*UserStats, error) {
	var st UserStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			follower_count,
			following_count,
			post_count,
			reputation_score,
			(SELECT COUNT(*) FROM likes l
			 INNER JOIN posts p ON l.target_id = p.id
			 WHERE l.target_type = 'post' AND p.author_id = ?) AS total_likes_received,
			(SELECT COUNT(*) FROM comments c
			 INNER JOIN posts p ON c.post_id = p.id
			 WHERE p.author_id = ?) AS total_comments_received
		FROM users
		WHERE id = ?
	`, id, id, id).Scan(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *userRepository) ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("INNER JOIN follows f ON f.follower_id = users.id").
		Where("f.following_id = ? AND users.is_active = ?", userID, true).
		Order("f.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).
		Table("follows f").
		Joins("INNER JOIN users u ON f.follower_id = u.id").
		Where("f.following_id = ? AND u.is_active = ?", userID, true).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("INNER JOIN follows f ON f.following_id = users.id").
		Where("f.follower_id = ? AND users.is_active = ?", userID, true).
		Order("f.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.WithContext(ctx).
		Table("follows f").
		Joins("INNER JOIN users u ON f.following_id = u.id").
		Where("f.follower_id = ? AND u.is_active = ?", userID, true).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
