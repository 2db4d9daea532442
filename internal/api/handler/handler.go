package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfi-backend/config"
	"github.com/d60-Lab/socialfi-backend/internal/service"
)

// Handler 聚合全部 HTTP 入口
type Handler struct {
	cfg       *config.Config
	userSvc   service.UserService
	postSvc   service.PostService
	socialSvc service.SocialService
}

func New(cfg *config.Config, userSvc service.UserService, postSvc service.PostService, socialSvc service.SocialService) *Handler {
	return &Handler{cfg: cfg, userSvc: userSvc, postSvc: postSvc, socialSvc: socialSvc}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
