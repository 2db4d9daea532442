package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

func TestRegisterPrimesSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	name := "alice"
	u, err := e.userSvc.Register(ctx, CreateUserInput{WalletAddress: "0xa", Username: &name})
	require.NoError(t, err)
	require.True(t, u.IsActive)

	// 注册即铺快照：绕过服务直接改库，读仍命中旧值
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).
		Update("display_name", "sneaky").Error)
	got, err := e.userSvc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.DisplayName)
}

func TestUpdateUserInvalidatesSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")

	_, err := e.userSvc.Get(ctx, u.ID)
	require.NoError(t, err)

	bio := "gm"
	updated, err := e.userSvc.Update(ctx, u.ID, UpdateUserInput{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "gm", *updated.Bio)

	// 失效后回源，读到新值
	got, err := e.userSvc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bio)
	require.Equal(t, "gm", *got.Bio)
}

func TestUpdateUserEmptyInputIsRead(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")

	got, err := e.userSvc.Update(ctx, u.ID, UpdateUserInput{})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestGetUserMissing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.userSvc.Get(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
	_, ok := e.cache.GetUser(ctx, 404)
	require.False(t, ok)
}

func TestGetByWalletAndUsername(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	name := "bob"
	u, err := e.userSvc.Register(ctx, CreateUserInput{WalletAddress: "0xbob", Username: &name})
	require.NoError(t, err)

	got, err := e.userSvc.GetByWallet(ctx, "0xbob")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = e.userSvc.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = e.userSvc.GetByWallet(ctx, "0xnobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUsernameAvailable(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	name := "taken"
	_, err := e.userSvc.Register(ctx, CreateUserInput{WalletAddress: "0xa", Username: &name})
	require.NoError(t, err)

	ok, err := e.userSvc.UsernameAvailable(ctx, "taken")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = e.userSvc.UsernameAvailable(ctx, "free")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUsernameTaken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	name := "dup"
	_, err := e.userSvc.Register(ctx, CreateUserInput{WalletAddress: "0xa", Username: &name})
	require.NoError(t, err)

	_, err = e.userSvc.Register(ctx, CreateUserInput{WalletAddress: "0xb", Username: &name})
	require.ErrorIs(t, err, ErrUsernameTaken)

	other := e.newUser(t, "0xc")
	_, err = e.userSvc.Update(ctx, other.ID, UpdateUserInput{Username: &name})
	require.ErrorIs(t, err, ErrUsernameTaken)

	// 改回自己的名字不算冲突
	own := "own"
	_, err = e.userSvc.Update(ctx, other.ID, UpdateUserInput{Username: &own})
	require.NoError(t, err)
	_, err = e.userSvc.Update(ctx, other.ID, UpdateUserInput{Username: &own})
	require.NoError(t, err)
}

func TestFollowersPagination(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	star := e.newUser(t, "0xstar")

	for i := 0; i < 5; i++ {
		fan := e.newUser(t, fmt.Sprintf("0xfan%d", i))
		require.NoError(t, e.socialSvc.Follow(ctx, fan.ID, star.ID))
	}

	users, meta, err := e.userSvc.Followers(ctx, star.ID, 1, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, int64(5), meta.Total)
	require.Equal(t, 2, meta.TotalPages)
	require.True(t, meta.HasMore)

	users, meta, err = e.userSvc.Followers(ctx, star.ID, 2, 3)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.False(t, meta.HasMore)

	// 反向视角
	fanFollowing, meta, err := e.userSvc.Following(ctx, users[0].ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, fanFollowing, 1)
	require.Equal(t, star.ID, fanFollowing[0].ID)
	require.Equal(t, int64(1), meta.Total)
}

func TestTouchLastLoginInvalidates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.newUser(t, "0xa")

	_, err := e.userSvc.Get(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, e.userSvc.TouchLastLogin(ctx, u.ID))
	_, ok := e.cache.GetUser(ctx, u.ID)
	require.False(t, ok)

	got, err := e.userSvc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestUserStats(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	author := e.newUser(t, "0xauthor")
	fan := e.newUser(t, "0xfan")

	p := e.newPost(t, author.ID, "stats")
	require.NoError(t, e.socialSvc.Follow(ctx, fan.ID, author.ID))
	require.NoError(t, e.socialSvc.Like(ctx, fan.ID, model.LikeTargetPost, p.ID))
	_, err := e.socialSvc.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: fan.ID, Content: "hi"})
	require.NoError(t, err)

	st, err := e.userSvc.Stats(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), st.PostCount)
	require.Equal(t, int64(1), st.FollowerCount)
	require.Equal(t, int64(0), st.FollowingCount)
	require.Equal(t, int64(1), st.TotalLikesReceived)
	require.Equal(t, int64(1), st.TotalCommentsReceived)
}
