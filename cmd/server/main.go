package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfi-backend/config"
	"github.com/d60-Lab/socialfi-backend/internal/api"
	"github.com/d60-Lab/socialfi-backend/internal/api/handler"
	"github.com/d60-Lab/socialfi-backend/internal/cache"
	"github.com/d60-Lab/socialfi-backend/internal/event"
	"github.com/d60-Lab/socialfi-backend/internal/repository"
	"github.com/d60-Lab/socialfi-backend/internal/service"
	"github.com/d60-Lab/socialfi-backend/pkg/database"
	"github.com/d60-Lab/socialfi-backend/pkg/logger"
	"github.com/d60-Lab/socialfi-backend/pkg/redisclient"
	"github.com/d60-Lab/socialfi-backend/pkg/telemetry"
)

// @title SocialFi Backend API
// @version 1.0
// @description SocialFi 社交后端：用户、帖子、关注流与缓存一致性层
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			logger.EnableSentry()
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg)
		if err != nil {
			logger.Warn("tracer init failed", zap.Error(err))
		} else {
			defer func() { _ = shutdown(ctx) }()
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	rdb, err := redisclient.Init(cfg)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// 缓存一致性层
	c := cache.New(rdb, cfg.Cache.EntityTTL, cfg.Cache.FeedTTL, cfg.Cache.OpTimeout)
	invalidator := cache.NewInvalidator(c)

	// 仓储
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// 事件发布：内存队列 → outbox → relay 投递
	publisher := event.NewAsyncPublisher(outboxRepo, cfg.Event.QueueSize)
	stopPublisher := publisher.Start(cfg.Event.Workers)
	relay := event.NewOutboxRelay(outboxRepo, event.LogSink{}, cfg.Event.RelayWorkers, cfg.Event.ClaimLimit, cfg.Event.PollInterval)
	stopRelay := relay.Start()

	userSvc := service.NewUserService(userRepo, c, invalidator, publisher)
	postSvc := service.NewPostService(postRepo, hashtagRepo, c, invalidator, publisher)
	socialSvc := service.NewSocialService(followRepo, likeRepo, commentRepo, bookmarkRepo, c, invalidator, publisher)

	h := handler.New(cfg, userSvc, postSvc, socialSvc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(cfg, h),
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	_ = stopRelay(shutdownCtx)
	_ = stopPublisher(shutdownCtx)
}
