package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

func TestGetPostReadThrough(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")
	p := e.newPost(t, u.ID, "first")

	// 创建即铺快照
	_, ok := e.cache.GetPost(ctx, p.ID)
	require.True(t, ok)

	// 清掉快照后读取应回源并回填
	e.cache.DelPost(ctx, p.ID)
	got, err := e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "first", got.Content)
	_, ok = e.cache.GetPost(ctx, p.ID)
	require.True(t, ok)
}

func TestGetPostMissingNotCached(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.postSvc.Get(ctx, 12345)
	require.ErrorIs(t, err, ErrNotFound)
	// 负结果不缓存
	_, ok := e.cache.GetPost(ctx, 12345)
	require.False(t, ok)
	_, err = e.postSvc.Get(ctx, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePostNeverServesStaleSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")
	p := e.newPost(t, u.ID, "before")

	// 读一次确保快照在位
	got, err := e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "before", got.Content)

	after := "after"
	updated, err := e.postSvc.Update(ctx, p.ID, UpdatePostInput{Content: &after})
	require.NoError(t, err)
	require.Equal(t, "after", updated.Content)

	// 更新后立即读，必须是新值
	got, err = e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "after", got.Content)
}

func TestDeletePostInvalidatesAndHides(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")
	p := e.newPost(t, u.ID, "gone soon")

	// 非作者删不掉
	require.NoError(t, e.postSvc.Delete(ctx, p.ID, u.ID+99))
	_, err := e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, e.postSvc.Delete(ctx, p.ID, u.ID))
	_, err = e.postSvc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, ok := e.cache.GetPost(ctx, p.ID)
	require.False(t, ok)
}

func TestViewCountInvalidatesSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")
	p := e.newPost(t, u.ID, "view me")

	require.NoError(t, e.postSvc.View(ctx, p.ID))
	got, err := e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ViewCount)
}

func TestFeedScenarioStalenessBounded(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.newUser(t, "0xviewer")
	u2 := e.newUser(t, "0xauthor")

	require.NoError(t, e.socialSvc.Follow(ctx, u1.ID, u2.ID))
	p := e.newPost(t, u2.ID, "P")

	// 首次 miss：回源并缓存
	posts, meta, err := e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, p.ID, posts[0].ID)
	require.Equal(t, int64(1), meta.Total)

	// 期间新帖不主动失效别人的 feed
	p2 := e.newPost(t, u2.ID, "P2")
	posts, _, err = e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1, "snapshot hit must serve the stale page")
	require.Equal(t, p.ID, posts[0].ID)

	// TTL 过后必须看到新帖
	e.mr.FastForward(5*time.Minute + time.Second)
	posts, _, err = e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, p2.ID, posts[0].ID)
	require.Equal(t, p.ID, posts[1].ID)
}

func TestFeedSecondPageBypassesCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.newUser(t, "0xviewer")
	u2 := e.newUser(t, "0xauthor")
	require.NoError(t, e.socialSvc.Follow(ctx, u1.ID, u2.ID))

	for i := 0; i < 25; i++ {
		e.newPost(t, u2.ID, "post")
	}

	posts, meta, err := e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 20)
	require.True(t, meta.HasMore)

	posts, meta, err = e.postSvc.Feed(ctx, u1.ID, 2, 20)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	require.Equal(t, int64(25), meta.Total)
	require.False(t, meta.HasMore)
	// 第二页不会写快照
	_, ok := e.cache.GetFeed(ctx, u1.ID)
	require.True(t, ok, "page-1 snapshot from the first call stays")
}

func TestFeedEmptyNotCached(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.newUser(t, "0xlonely")

	posts, meta, err := e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Empty(t, posts)
	require.Equal(t, int64(0), meta.Total)
	_, ok := e.cache.GetFeed(ctx, u1.ID)
	require.False(t, ok)
}

func TestFeedExcludesDeletedAndNonPublic(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.newUser(t, "0xviewer")
	u2 := e.newUser(t, "0xauthor")
	require.NoError(t, e.socialSvc.Follow(ctx, u1.ID, u2.ID))

	visible := e.newPost(t, u2.ID, "visible")
	deleted := e.newPost(t, u2.ID, "deleted")
	require.NoError(t, e.postSvc.Delete(ctx, deleted.ID, u2.ID))

	private, err := e.postSvc.Create(ctx, CreatePostInput{AuthorID: u2.ID, Content: "private", Visibility: model.VisibilityPrivate})
	require.NoError(t, err)

	posts, _, err := e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, visible.ID, posts[0].ID)
	require.NotEqual(t, private.ID, posts[0].ID)
}

func TestFeedTieBreakDescendingID(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.newUser(t, "0xviewer")
	u2 := e.newUser(t, "0xauthor")
	require.NoError(t, e.socialSvc.Follow(ctx, u1.ID, u2.ID))

	// 相同 created_at，按 id 倒序
	ts := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 3; i++ {
		p := &model.Post{
			AuthorID:         u2.ID,
			Content:          "same instant",
			Visibility:       model.VisibilityPublic,
			ModerationStatus: model.ModerationApproved,
			CreatedAt:        ts,
		}
		require.NoError(t, e.db.Create(p).Error)
	}

	posts, _, err := e.postSvc.Feed(ctx, u1.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Greater(t, posts[0].ID, posts[1].ID)
	require.Greater(t, posts[1].ID, posts[2].ID)
}

func TestPostsByHashtag(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")

	p, err := e.postSvc.Create(ctx, CreatePostInput{
		AuthorID: u.ID,
		Content:  "gm #SocialFi",
		Hashtags: []string{"Social Fi"},
	})
	require.NoError(t, err)

	// 归一化后命中
	posts, meta, err := e.postSvc.ByHashtag(ctx, "socialfi", 1, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, p.ID, posts[0].ID)
	require.Equal(t, int64(1), meta.Total)

	posts, _, err = e.postSvc.ByHashtag(ctx, "other", 1, 20)
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestTrendingHashtags(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")

	for i := 0; i < 3; i++ {
		_, err := e.postSvc.Create(ctx, CreatePostInput{AuthorID: u.ID, Content: "hot", Hashtags: []string{"hot"}})
		require.NoError(t, err)
	}
	_, err := e.postSvc.Create(ctx, CreatePostInput{AuthorID: u.ID, Content: "cold", Hashtags: []string{"cold"}})
	require.NoError(t, err)

	tags, err := e.postSvc.TrendingHashtags(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "hot", tags[0].TagNormalized)
	require.Equal(t, int64(3), tags[0].PostCount)
	require.Equal(t, "cold", tags[1].TagNormalized)
}

func TestCacheOutageDoesNotFailReads(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")
	p := e.newPost(t, u.ID, "resilient")

	e.mr.Close()

	got, err := e.postSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "resilient", got.Content)

	// 写路径同样不受缓存故障影响
	after := "still fine"
	_, err = e.postSvc.Update(ctx, p.ID, UpdatePostInput{Content: &after})
	require.NoError(t, err)
}
