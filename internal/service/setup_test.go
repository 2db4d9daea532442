package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/pkg/database"
)

var dbSeq atomic.Int64

type testEnv struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	cache     *cache.Cache
	follows   repository.FollowRepository
	posts     repository.PostRepository
	users     repository.UserRepository
	userSvc   UserService
	postSvc   PostService
	socialSvc SocialService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.New(rdb, time.Hour, 5*time.Minute, 200*time.Millisecond)
	iv := cache.NewInvalidator(c)
	pub := event.NopPublisher{}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	return &testEnv{
		db:        db,
		mr:        mr,
		cache:     c,
		follows:   followRepo,
		posts:     postRepo,
		users:     userRepo,
		userSvc:   NewUserService(userRepo, c, iv, pub),
		postSvc:   NewPostService(postRepo, hashtagRepo, c, iv, pub),
		socialSvc: NewSocialService(followRepo, likeRepo, commentRepo, bookmarkRepo, c, iv, pub),
	}
}

func (e *testEnv) newUser(t *testing.T, wallet string) *model.User {
	t.Helper()
	u, err := e.userSvc.Register(context.Background(), CreateUserInput{WalletAddress: wallet})
	require.NoError(t, err)
	return u
}

func (e *testEnv) newPost(t *testing.T, authorID int64, content string) *model.Post {
	t.Helper()
	p, err := e.postSvc.Create(context.Background(), CreatePostInput{AuthorID: authorID, Content: content})
	require.NoError(t, err)
	return p
}
