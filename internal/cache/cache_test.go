package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Hour, 5*time.Minute, 200*time.Millisecond), mr
}

func TestEntitySnapshotRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, ok := c.GetPost(ctx, 1)
	require.False(t, ok)

	p := &model.Post{ID: 1, AuthorID: 7, Content: "hello", Visibility: model.VisibilityPublic}
	c.SetPost(ctx, p)

	got, ok := c.GetPost(ctx, 1)
	require.True(t, ok)
	require.Equal(t, "hello", got.Content)
	require.Equal(t, int64(7), got.AuthorID)

	c.DelPost(ctx, 1)
	_, ok = c.GetPost(ctx, 1)
	require.False(t, ok)
}

func TestEntitySnapshotExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	u := &model.User{ID: 3, WalletAddress: "0xabc"}
	c.SetUser(ctx, u)
	_, ok := c.GetUser(ctx, 3)
	require.True(t, ok)

	mr.FastForward(time.Hour + time.Second)
	_, ok = c.GetUser(ctx, 3)
	require.False(t, ok)
}

func TestFeedSnapshotExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	posts := []model.Post{{ID: 2, Content: "b"}, {ID: 1, Content: "a"}}
	c.SetFeed(ctx, 9, posts)

	got, ok := c.GetFeed(ctx, 9)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].ID)

	// 快照只靠 TTL 过期
	mr.FastForward(5*time.Minute + time.Second)
	_, ok = c.GetFeed(ctx, 9)
	require.False(t, ok)
}

func TestFollowSetSymmetry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.RecordFollow(ctx, 1, 2)
	following, known := c.IsFollowing(ctx, 1, 2)
	require.True(t, known)
	require.True(t, following)

	// 双向集合都要写到
	require.True(t, mr.Exists("socialfi:user:1:following"))
	require.True(t, mr.Exists("socialfi:user:2:followers"))
	members, err := mr.SMembers("socialfi:user:2:followers")
	require.NoError(t, err)
	require.Contains(t, members, "1")

	c.RemoveFollow(ctx, 1, 2)
	_, known = c.IsFollowing(ctx, 1, 2)
	require.False(t, known)
}

func TestIsFollowingNegativeIsUnknown(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	// 集合不存在与成员不存在都只能得出 unknown
	_, known := c.IsFollowing(ctx, 5, 6)
	require.False(t, known)

	c.RecordFollow(ctx, 5, 7)
	_, known = c.IsFollowing(ctx, 5, 6)
	require.False(t, known)
}

func TestCacheDownDegradesToMiss(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	p := &model.Post{ID: 4, Content: "x"}
	c.SetPost(ctx, p)
	mr.Close()

	// 读写均静默降级，不 panic 不报错
	_, ok := c.GetPost(ctx, 4)
	require.False(t, ok)
	c.SetPost(ctx, p)
	c.DelPost(ctx, 4)
	c.RecordFollow(ctx, 1, 2)
	_, known := c.IsFollowing(ctx, 1, 2)
	require.False(t, known)
}
