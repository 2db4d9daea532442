package service

import (
	"context"

	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

type CreateCommentInput struct {
	PostID    int64    `json:"post_id" binding:"required"`
	AuthorID  int64    `json:"author_id" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	ParentID  *int64   `json:"parent_id"`
	MediaURLs []string `json:"media_urls"`
	Mentions  []int64  `json:"mentions"`
}

// SocialService 社交互动：点赞、关注、评论、收藏
type SocialService interface {
	Like(ctx context.Context, userID int64, targetType string, targetID int64) error
	Unlike(ctx context.Context, userID int64, targetType string, targetID int64) error
	HasLiked(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error)

	Follow(ctx context.Context, followerID, followingID int64) error
	Unfollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)

	CreateComment(ctx context.Context, in CreateCommentInput) (*model.Comment, error)
	Comments(ctx context.Context, postID int64, page, limit int) ([]model.CommentWithAuthor, response.Meta, error)
	Replies(ctx context.Context, commentID int64) ([]model.CommentWithAuthor, error)
	DeleteComment(ctx context.Context, commentID, authorID int64) error

	Bookmark(ctx context.Context, userID, postID int64) error
	Unbookmark(ctx context.Context, userID, postID int64) error
	Bookmarks(ctx context.Context, userID int64, page, limit int) ([]model.BookmarkedPost, response.Meta, error)
}

type socialService struct {
	follows     repository.FollowRepository
	likes       repository.LikeRepository
	comments    repository.CommentRepository
	bookmarks   repository.BookmarkRepository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	publisher   event.Publisher
}

func NewSocialService(
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	bookmarks repository.BookmarkRepository,
	c *cache.Cache,
	iv *cache.Invalidator,
	pub event.Publisher,
) SocialService {
	return &socialService{
		follows:     follows,
		likes:       likes,
		comments:    comments,
		bookmarks:   bookmarks,
		cache:       c,
		invalidator: iv,
		publisher:   pub,
	}
}

func (s *socialService) Like(ctx context.Context, userID int64, targetType string, targetID int64) error {
	created, err := s.likes.Create(ctx, userID, targetType, targetID)
	if err != nil {
		return err
	}
	if !created {
		// 重复点赞：无状态变化，不碰缓存不发事件
		return nil
	}
	if targetType == model.LikeTargetPost {
		s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationPostLiked, PostID: targetID})
	}
	s.publisher.Publish(event.Event{
		Kind:    event.KindLikeCreated,
		Payload: map[string]interface{}{"user_id": userID, "target_type": targetType, "target_id": targetID},
	})
	return nil
}

func (s *socialService) Unlike(ctx context.Context, userID int64, targetType string, targetID int64) error {
	removed, err := s.likes.Delete(ctx, userID, targetType, targetID)
	if err != nil {
		return err
	}
	if removed && targetType == model.LikeTargetPost {
		s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationPostUnliked, PostID: targetID})
	}
	return nil
}

func (s *socialService) HasLiked(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	return s.likes.Exists(ctx, userID, targetType, targetID)
}

func (s *socialService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return ErrFollowSelf
	}
	created, err := s.follows.Create(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !created {
		// 幂等：已关注时第二次调用是无错 no-op
		return nil
	}
	s.invalidator.Apply(ctx, cache.Mutation{
		Kind:        cache.MutationFollowCreated,
		FollowerID:  followerID,
		FollowingID: followingID,
	})
	s.publisher.Publish(event.Event{
		Kind:    event.KindFollowCreated,
		Payload: map[string]interface{}{"follower_id": followerID, "following_id": followingID},
	})
	return nil
}

func (s *socialService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	removed, err := s.follows.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	// 集合移除无条件执行：即使边本就不存在，也顺带清掉可能残留的脏成员
	s.invalidator.Apply(ctx, cache.Mutation{
		Kind:        cache.MutationFollowRemoved,
		FollowerID:  followerID,
		FollowingID: followingID,
	})
	if removed {
		s.publisher.Publish(event.Event{
			Kind:    event.KindFollowRemoved,
			Payload: map[string]interface{}{"follower_id": followerID, "following_id": followingID},
		})
	}
	return nil
}

func (s *socialService) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	if following, known := s.cache.IsFollowing(ctx, followerID, followingID); known {
		return following, nil
	}
	// unknown：回源判定，正结果回填集合（自愈半边失败的 RecordFollow）
	exists, err := s.follows.Exists(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if exists {
		s.cache.RecordFollow(ctx, followerID, followingID)
	}
	return exists, nil
}

func (s *socialService) CreateComment(ctx context.Context, in CreateCommentInput) (*model.Comment, error) {
	c := &model.Comment{
		PostID:    in.PostID,
		AuthorID:  in.AuthorID,
		ParentID:  in.ParentID,
		Content:   in.Content,
		MediaURLs: in.MediaURLs,
		Mentions:  in.Mentions,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	// comment_count 变了，帖子快照失效
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationCommentCreated, PostID: in.PostID})
	return c, nil
}

func (s *socialService) Comments(ctx context.Context, postID int64, page, limit int) ([]model.CommentWithAuthor, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	rows, total, err := s.comments.ListByPost(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return rows, response.NewMeta(page, limit, total), nil
}

func (s *socialService) Replies(ctx context.Context, commentID int64) ([]model.CommentWithAuthor, error) {
	return s.comments.ListReplies(ctx, commentID)
}

func (s *socialService) DeleteComment(ctx context.Context, commentID, authorID int64) error {
	_, err := s.comments.SoftDelete(ctx, commentID, authorID)
	return err
}

func (s *socialService) Bookmark(ctx context.Context, userID, postID int64) error {
	_, err := s.bookmarks.Create(ctx, userID, postID)
	return err
}

func (s *socialService) Unbookmark(ctx context.Context, userID, postID int64) error {
	_, err := s.bookmarks.Delete(ctx, userID, postID)
	return err
}

func (s *socialService) Bookmarks(ctx context.Context, userID int64, page, limit int) ([]model.BookmarkedPost, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	rows, total, err := s.bookmarks.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return rows, response.NewMeta(page, limit, total), nil
}
