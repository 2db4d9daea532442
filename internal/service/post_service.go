package service

import (
	"context"
	"encoding/json"

	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

type CreatePostInput struct {
	AuthorID    int64    `json:"author_id" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	MediaURLs   []string `json:"media_urls"`
	MediaType   string   `json:"media_type"`
	Hashtags    []string `json:"hashtags"`
	Mentions    []int64  `json:"mentions"`
	Visibility  string   `json:"visibility"`
	IsSensitive bool     `json:"is_sensitive"`
}

type UpdatePostInput struct {
	Content     *string   `json:"content"`
	MediaURLs   *[]string `json:"media_urls"`
	Hashtags    *[]string `json:"hashtags"`
	IsPinned    *bool     `json:"is_pinned"`
	IsSensitive *bool     `json:"is_sensitive"`
}

// PostService 帖子服务：写路径次序固定为 落库 → 失效 → 发事件
type PostService interface {
	Create(ctx context.Context, in CreatePostInput) (*model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	Update(ctx context.Context, id int64, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, id, authorID int64) error
	View(ctx context.Context, id int64) error
	UserPosts(ctx context.Context, authorID int64, page, limit int) ([]model.Post, response.Meta, error)
	Feed(ctx context.Context, viewerID int64, page, limit int) ([]model.Post, response.Meta, error)
	ByHashtag(ctx context.Context, tag string, page, limit int) ([]model.Post, response.Meta, error)
	TrendingHashtags(ctx context.Context, limit int) ([]model.Hashtag, error)
}

type postService struct {
	posts       repository.PostRepository
	hashtags    repository.HashtagRepository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	publisher   event.Publisher
}

func NewPostService(posts repository.PostRepository, hashtags repository.HashtagRepository, c *cache.Cache, iv *cache.Invalidator, pub event.Publisher) PostService {
	return &postService{posts: posts, hashtags: hashtags, cache: c, invalidator: iv, publisher: pub}
}

func (s *postService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	p := &model.Post{
		AuthorID:         in.AuthorID,
		Content:          in.Content,
		MediaURLs:        in.MediaURLs,
		MediaType:        in.MediaType,
		Hashtags:         in.Hashtags,
		Mentions:         in.Mentions,
		Visibility:       in.Visibility,
		IsSensitive:      in.IsSensitive,
		ModerationStatus: model.ModerationApproved,
	}
	if p.MediaType == "" {
		p.MediaType = "text"
	}
	if p.Visibility == "" {
		p.Visibility = model.VisibilityPublic
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	// 新帖无旧快照可失效，直接铺快照
	s.cache.SetPost(ctx, p)
	s.publisher.Publish(event.Event{
		Kind:    event.KindPostCreated,
		Payload: map[string]interface{}{"post_id": p.ID, "author_id": p.AuthorID},
	})
	return p, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*model.Post, error) {
	if p, ok := s.cache.GetPost(ctx, id); ok {
		return p, nil
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	s.cache.SetPost(ctx, p)
	return p, nil
}

func (s *postService) Update(ctx context.Context, id int64, in UpdatePostInput) (*model.Post, error) {
	fields := map[string]interface{}{}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	// serializer 字段走 map 更新时需手工编码
	if in.MediaURLs != nil {
		if b, err := json.Marshal(*in.MediaURLs); err == nil {
			fields["media_urls"] = string(b)
		}
	}
	if in.Hashtags != nil {
		if b, err := json.Marshal(*in.Hashtags); err == nil {
			fields["hashtags"] = string(b)
		}
	}
	if in.IsPinned != nil {
		fields["is_pinned"] = *in.IsPinned
	}
	if in.IsSensitive != nil {
		fields["is_sensitive"] = *in.IsSensitive
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	p, err := s.posts.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationPostUpdated, PostID: id})
	s.publisher.Publish(event.Event{
		Kind:    event.KindPostUpdated,
		Payload: map[string]interface{}{"post_id": id},
	})
	return p, nil
}

func (s *postService) Delete(ctx context.Context, id, authorID int64) error {
	deleted, err := s.posts.SoftDelete(ctx, id, authorID)
	if err != nil {
		return err
	}
	if !deleted {
		// 幂等：无可删行时不碰缓存
		return nil
	}
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationPostDeleted, PostID: id})
	s.publisher.Publish(event.Event{
		Kind:    event.KindPostDeleted,
		Payload: map[string]interface{}{"post_id": id, "author_id": authorID},
	})
	return nil
}

func (s *postService) View(ctx context.Context, id int64) error {
	if err := s.posts.IncrementViewCount(ctx, id); err != nil {
		return err
	}
	// 浏览数变了，下一次读回源重建快照
	s.invalidator.Apply(ctx, cache.Mutation{Kind: cache.MutationPostViewed, PostID: id})
	return nil
}

func (s *postService) UserPosts(ctx context.Context, authorID int64, page, limit int) ([]model.Post, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.posts.ListByAuthor(ctx, authorID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return posts, response.NewMeta(page, limit, total), nil
}

// Feed 关注流。只有第一页走快照；命中即返回，接受至多 FeedTTL 的陈旧，
// 换取不对所有粉丝做失效扇出。后续页恒走库。
func (s *postService) Feed(ctx context.Context, viewerID int64, page, limit int) ([]model.Post, response.Meta, error) {
	page, limit = normalizePage(page, limit)

	if page == 1 {
		if posts, ok := s.cache.GetFeed(ctx, viewerID); ok {
			meta := response.Meta{
				Page:       1,
				Limit:      limit,
				Total:      int64(len(posts)),
				TotalPages: 1,
				HasMore:    false,
			}
			return posts, meta, nil
		}
	}

	posts, total, err := s.posts.Feed(ctx, viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	if page == 1 && len(posts) > 0 {
		s.cache.SetFeed(ctx, viewerID, posts)
	}
	return posts, response.NewMeta(page, limit, total), nil
}

func (s *postService) TrendingHashtags(ctx context.Context, limit int) ([]model.Hashtag, error) {
	return s.hashtags.Trending(ctx, limit)
}

func (s *postService) ByHashtag(ctx context.Context, tag string, page, limit int) ([]model.Post, response.Meta, error) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.posts.ListByHashtag(ctx, repository.NormalizeTag(tag), (page-1)*limit, limit)
	if err != nil {
		return nil, response.Meta{}, err
	}
	return posts, response.NewMeta(page, limit, total), nil
}
