package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/socialfi-backend/config"
	_ "github.com/d60-Lab/socialfi-backend/docs"
	"github.com/d60-Lab/socialfi-backend/internal/api/handler"
	"github.com/d60-Lab/socialfi-backend/internal/api/middleware"
)

// NewRouter 装配路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("socialfi-backend"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.RateLimit.PerMinute))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := cfg.Auth.JWTSecret
	v1 := r.Group("/api/v1")

	v1.POST("/auth/token", h.IssueToken)

	users := v1.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("/check-username", h.CheckUsername)
		users.GET("/wallet/:address", h.GetUserByWallet)
		users.GET("/username/:username", h.GetUserByUsername)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", middleware.RequireAuth(secret), h.UpdateUser)
		users.GET("/:id/followers", h.Followers)
		users.GET("/:id/following", h.Following)
		users.GET("/:id/stats", h.UserStats)
	}

	posts := v1.Group("/posts")
	{
		// 发帖单独一档更严的限流
		posts.POST("", middleware.RequireAuth(secret), middleware.RateLimit(cfg.RateLimit.PostPerMinute), h.CreatePost)
		posts.GET("/user/:user_id", h.UserPosts)
		posts.GET("/hashtag/:tag", h.PostsByHashtag)
		posts.GET("/:id", middleware.OptionalAuth(secret), h.GetPost)
		posts.PUT("/:id", middleware.RequireAuth(secret), h.UpdatePost)
		posts.DELETE("/:id", middleware.RequireAuth(secret), h.DeletePost)
		posts.POST("/:id/view", h.ViewPost)
		posts.GET("/:id/comments", h.Comments)
	}

	v1.GET("/feed", middleware.RequireAuth(secret), h.Feed)
	v1.GET("/hashtags/trending", h.TrendingHashtags)

	social := v1.Group("/social", middleware.RequireAuth(secret))
	{
		social.POST("/like", h.Like)
		social.POST("/unlike", h.Unlike)
		social.GET("/liked", h.HasLiked)
		social.POST("/follow", h.Follow)
		social.DELETE("/follow/:id", h.Unfollow)
		social.GET("/following/:id", h.IsFollowing)
	}

	comments := v1.Group("/comments")
	{
		comments.POST("", middleware.RequireAuth(secret), h.CreateComment)
		comments.GET("/:id/replies", h.Replies)
		comments.DELETE("/:id", middleware.RequireAuth(secret), h.DeleteComment)
	}

	bookmarks := v1.Group("/bookmarks", middleware.RequireAuth(secret))
	{
		bookmarks.GET("", h.Bookmarks)
		bookmarks.POST("/:post_id", h.Bookmark)
		bookmarks.DELETE("/:post_id", h.Unbookmark)
	}

	return r
}
