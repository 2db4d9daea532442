package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/model"
)

var benchSeq atomic.Int64

func setupGraphBenchDB(b *testing.B) *gorm.DB {
	dsn := fmt.Sprintf("file:bench%d?mode=memory&cache=shared", benchSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Follow{}, &model.Post{}); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func BenchmarkFollowWriteWithCounters(b *testing.B) {
	db := setupGraphBenchDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	// 预创建部分用户
	users := make([]model.User, 1000)
	for i := range users {
		users[i] = model.User{WalletAddress: fmt.Sprintf("0x%04d", i)}
	}
	if err := db.Create(&users).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rnd.Intn(len(users))].ID
		to := users[rnd.Intn(len(users))].ID
		if from == to {
			continue
		}
		_, _ = followRepo.Create(ctx, from, to)
	}
}

func BenchmarkFeedAndEdgeQueries(b *testing.B) {
	db := setupGraphBenchDB(b)
	followRepo := NewFollowRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	// 构造：viewer 关注 N 个作者，每个作者若干帖
	const authors = 500
	const postsPerAuthor = 10
	viewer := model.User{WalletAddress: "0xviewer"}
	_ = db.Create(&viewer).Error
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < authors; i++ {
		u := model.User{WalletAddress: fmt.Sprintf("0xa%04d", i)}
		_ = db.Create(&u).Error
		_, _ = followRepo.Create(ctx, viewer.ID, u.ID)
		batch := make([]model.Post, postsPerAuthor)
		for j := range batch {
			batch[j] = model.Post{
				AuthorID:         u.ID,
				Content:          "bench",
				Visibility:       model.VisibilityPublic,
				ModerationStatus: model.ModerationApproved,
				CreatedAt:        base.Add(time.Duration(i*postsPerAuthor+j) * time.Second),
			}
		}
		_ = db.Create(&batch).Error
	}

	b.ResetTimer()
	b.Run("FeedFirstPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = postRepo.Feed(ctx, viewer.ID, 0, 20)
		}
	})

	b.Run("EdgeExists", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.Exists(ctx, viewer.ID, int64(2+i%authors))
		}
	})
}
