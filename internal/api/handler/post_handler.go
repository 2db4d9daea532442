package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfi-backend/internal/api/middleware"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/service"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	// 作者以登录态为准
	req.AuthorID = middleware.CurrentUserID(c)
	p, err := h.postSvc.Create(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, p)
}

// GetPost 查询帖子
// @Summary 查询帖子
// @Tags 帖子
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	p, err := h.postSvc.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// 登录态下附带是否已赞
	if uid := middleware.CurrentUserID(c); uid > 0 {
		liked, _ := h.socialSvc.HasLiked(c.Request.Context(), uid, model.LikeTargetPost, id)
		response.Success(c, gin.H{"post": p, "liked": liked})
		return
	}
	response.Success(c, p)
}

// UpdatePost 更新帖子
// @Summary 更新帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子ID"
// @Param request body service.UpdatePostInput true "更新字段"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	var req service.UpdatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postSvc.Update(c.Request.Context(), id, req)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost 删帖（软删，仅作者）
// @Summary 删帖
// @Tags 帖子
// @Security BearerAuth
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.postSvc.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ViewPost 浏览计数
// @Summary 浏览计数
// @Tags 帖子
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/view [post]
func (h *Handler) ViewPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.postSvc.View(c.Request.Context(), id); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// UserPosts 某用户的帖子
// @Summary 某用户的帖子
// @Tags 帖子
// @Param user_id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/posts/user/{user_id} [get]
func (h *Handler) UserPosts(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	page, limit := pageParams(c)
	posts, meta, err := h.postSvc.UserPosts(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, posts, meta)
}

// Feed 关注流（第一页可能来自快照，至多 5 分钟陈旧）
// @Summary 关注流
// @Tags 帖子
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page, limit := pageParams(c)
	posts, meta, err := h.postSvc.Feed(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, posts, meta)
}

// TrendingHashtags 热门话题
// @Summary 热门话题
// @Tags 帖子
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/hashtags/trending [get]
func (h *Handler) TrendingHashtags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	tags, err := h.postSvc.TrendingHashtags(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, tags)
}

// PostsByHashtag 话题下的帖子
// @Summary 话题下的帖子
// @Tags 帖子
// @Param tag path string true "话题"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/posts/hashtag/{tag} [get]
func (h *Handler) PostsByHashtag(c *gin.Context) {
	page, limit := pageParams(c)
	posts, meta, err := h.postSvc.ByHashtag(c.Request.Context(), c.Param("tag"), page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, posts, meta)
}
