package service

import (
	"context"

	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

type CreateUserInput struct {
	WalletAddress string  `json:"wallet_address" binding:"required,wallet"`
	Username      *string `json:"username"`
	DisplayName   *string `json:"display_name"`
	Bio           *string `json:"bio"`
	AvatarURL     *string `json:"avatar_url"`
}

type UpdateUserInput struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	CoverURL    *string `json:"cover_url"`
	Email       *string `json:"email"`
}

// UserService 用户服务
type UserService interface {
	Register(ctx context.Context, in CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	GetByWallet(ctx context.Context, wallet string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error)
	Followers(ctx context.Context, userID int64, page, limit int) ([]model.User, response.Meta, error)
	Following(ctx context.Context, userID int64, page, limit int) ([]model.User, response.Meta, error)
	TouchLastLogin(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*repository.UserStats, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
}

type userService struct {
	users       repository.UserRepository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	publisher   event.Publisher
}

func NewUserService(users repository.UserRepository, c *cache.Cache, iv *cache.Invalidator, pub event.Publisher) UserService {
	return &userService{users: users, cache: c, invalidator: iv, publisher: pub}
}

func (s *userService) Register(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if in.Username != nil {
		taken, err := s.users.UsernameExists(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	u := &model.User{
		WalletAddress: in.WalletAddress,
		Username:      in.Username,
		DisplayName:   in.DisplayName,
		Bio:           in.Bio,
		AvatarURL:     in.AvatarURL,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	// 写成功后立即铺快照；失败只影响首次读的回源成本
	s.cache.SetUser(ctx, u)
	s.publisher.Publish(event.Event{
		Kind:    event.KindUserRegistered,
		Payload: map[string]interface{}{"user_id": u.ID, "wallet_address": u.WalletAddress},
	})
	return u, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := s.cache.GetUser(ctx, id); ok {
		return u, nil
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// 负结果不缓存，重复 miss 重新回源
		return nil, ErrNotFound
	}
	s.cache.SetUser(ctx, u)
	return u, nil
}

func (s *userService) GetByWallet(ctx context.Context, wallet string) (*model.User, error) {
	u, err := s.users.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error) {
	fields := map[string]interface{}{}
	if in.Username != nil {
		current, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		// 改成别人占用的名字才算冲突，改回自己的不算
		if current.Username == nil || *current.Username != *in.Username {
			taken, err := s.users.UsernameExists(ctx, *in.Username)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameTaken
			}
		}
		fields["username"] = *in.Username
	}
	if in.DisplayName != nil {
		fields["display_name"] = *in.DisplayName
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = *in.AvatarURL
	}
	if in.CoverURL != nil {
		fields["cover_url"] = *in.CoverURL
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	u, err := s.users.Update(ctx, id, fields)
	if err != nil {
		// 写失败不动缓存
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationUserUpdated, UserID: id})
	return u, nil
}

func (s *userService) Followers(ctx context.Context, userID int64, page, limit int) ([]model.User, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.users.ListFollowers(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return users, response.NewMeta(page, limit, total), nil
}

func (s *userService) Following(ctx context.Context, userID int64, page, limit int) ([]model.User, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.users.ListFollowing(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return users, response.NewMeta(page, limit, total), nil
}

func (s *userService) TouchLastLogin(ctx context.Context, id int64) error {
	if err := s.users.TouchLastLogin(ctx, id); err != nil {
		return err
	}
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationUserUpdated, UserID: id})
	return nil
}

func (s *userService) Stats(ctx context.Context, id int64) (*repository.UserStats, error) {
	return s.users.Stats(ctx, id)
}

func (s *userService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.users.UsernameExists(ctx, username)
	return !exists, err
}
