package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/internal/service"
	"github.com/d60-Lab/socialfi-backend/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

// feedbench：对比关注流第一页 走库 vs 走快照 的读延迟
func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5432 sslmode=disable"
	}
	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))
	mustDo(db.Exec("DROP TABLE IF EXISTS follows, posts, users CASCADE").Error)
	mustDo(database.Migrate(db))

	rdb := redis.NewClient(&redis.Options{Addr: envOr("REDIS_ADDR", "localhost:6379")})
	mustDo(rdb.FlushDB(ctx).Err())

	authors := envInt("AUTHORS", 200)
	postsPerAuthor := envInt("POSTS", 50)
	reads := envInt("READS", 2000)

	fmt.Printf("seeding %d authors x %d posts...\n", authors, postsPerAuthor)

	viewer := model.User{WalletAddress: "0xviewer"}
	mustDo(db.Create(&viewer).Error)

	followRepo := repository.NewFollowRepository(db)
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < authors; i++ {
		u := model.User{WalletAddress: fmt.Sprintf("0xauthor%d", i)}
		mustDo(db.Create(&u).Error)
		_ = must(followRepo.Create(ctx, viewer.ID, u.ID))
		batch := make([]model.Post, postsPerAuthor)
		for j := range batch {
			batch[j] = model.Post{
				AuthorID:         u.ID,
				Content:          fmt.Sprintf("post %d-%d", i, j),
				Visibility:       model.VisibilityPublic,
				ModerationStatus: model.ModerationApproved,
				CreatedAt:        base.Add(time.Duration(rand.Intn(86400)) * time.Second),
			}
		}
		mustDo(db.Create(&batch).Error)
	}

	postRepo := repository.NewPostRepository(db)
	c := cache.New(rdb, time.Hour, 5*time.Minute, 500*time.Millisecond)
	postSvc := service.NewPostService(postRepo, repository.NewHashtagRepository(db), c, cache.NewInvalidator(c), event.NopPublisher{})

	// 纯走库
	direct := make([]time.Duration, 0, reads)
	for i := 0; i < reads; i++ {
		st := time.Now()
		_, _, err := postRepo.Feed(ctx, viewer.ID, 0, 20)
		mustDo(err)
		direct = append(direct, time.Since(st))
	}

	// 走快照（首次 miss 回源，其余命中）
	cached := make([]time.Duration, 0, reads)
	for i := 0; i < reads; i++ {
		st := time.Now()
		_, _, err := postSvc.Feed(ctx, viewer.ID, 1, 20)
		mustDo(err)
		cached = append(cached, time.Since(st))
	}

	report("direct", direct)
	report("cached", cached)
}

func report(name string, ds []time.Duration) {
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	pct := func(p float64) time.Duration {
		idx := int(float64(len(ds)-1) * p)
		return ds[idx]
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	fmt.Printf("%-8s n=%d avg=%v p50=%v p95=%v p99=%v max=%v\n",
		name, len(ds), sum/time.Duration(len(ds)), pct(0.50), pct(0.95), pct(0.99), ds[len(ds)-1])
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
