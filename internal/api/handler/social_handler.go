package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfi-backend/internal/api/middleware"
	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/internal/service"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

type likeRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=post comment"`
	TargetID   int64  `json:"target_id" binding:"required"`
}

type followRequest struct {
	FollowingID int64 `json:"following_id" binding:"required"`
}

// Like 点赞
// @Summary 点赞
// @Tags 社交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body likeRequest true "点赞目标"
// @Success 200 {object} response.Response
// @Router /api/v1/social/like [post]
func (h *Handler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.socialSvc.Like(c.Request.Context(), middleware.CurrentUserID(c), req.TargetType, req.TargetID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Unlike 取消点赞
// @Summary 取消点赞
// @Tags 社交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body likeRequest true "取消目标"
// @Success 200 {object} response.Response
// @Router /api/v1/social/unlike [post]
func (h *Handler) Unlike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.socialSvc.Unlike(c.Request.Context(), middleware.CurrentUserID(c), req.TargetType, req.TargetID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// HasLiked 是否已赞
// @Summary 是否已赞
// @Tags 社交
// @Security BearerAuth
// @Param target_type query string true "post / comment"
// @Param target_id query int true "目标ID"
// @Success 200 {object} response.Response
// @Router /api/v1/social/liked [get]
func (h *Handler) HasLiked(c *gin.Context) {
	targetType := c.Query("target_type")
	if targetType != model.LikeTargetPost && targetType != model.LikeTargetComment {
		response.BadRequest(c, "invalid target_type")
		return
	}
	targetID, ok := queryID(c, "target_id")
	if !ok {
		response.BadRequest(c, "invalid target_id")
		return
	}
	liked, err := h.socialSvc.HasLiked(c.Request.Context(), middleware.CurrentUserID(c), targetType, targetID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// Follow 关注
// @Summary 关注用户
// @Tags 社交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body followRequest true "关注对象"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/social/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.socialSvc.Follow(c.Request.Context(), middleware.CurrentUserID(c), req.FollowingID)
	if errors.Is(err, service.ErrFollowSelf) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 社交
// @Security BearerAuth
// @Param id path int true "被关注者ID"
// @Success 200 {object} response.Response
// @Router /api/v1/social/follow/{id} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.socialSvc.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// IsFollowing 是否已关注
// @Summary 是否已关注
// @Tags 社交
// @Security BearerAuth
// @Param id path int true "被关注者ID"
// @Success 200 {object} response.Response
// @Router /api/v1/social/following/{id} [get]
func (h *Handler) IsFollowing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	following, err := h.socialSvc.IsFollowing(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"following": following})
}

// CreateComment 发评论
// @Summary 发评论
// @Tags 社交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCommentInput true "评论内容"
// @Success 200 {object} response.Response
// @Router /api/v1/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req service.CreateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.AuthorID = middleware.CurrentUserID(c)
	comment, err := h.socialSvc.CreateComment(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, comment)
}

// Comments 帖子评论列表
// @Summary 帖子评论列表
// @Tags 社交
// @Param id path int true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) Comments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	page, limit := pageParams(c)
	rows, meta, err := h.socialSvc.Comments(c.Request.Context(), id, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, rows, meta)
}

// Replies 评论回复
// @Summary 评论回复
// @Tags 社交
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id}/replies [get]
func (h *Handler) Replies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid comment id")
		return
	}
	rows, err := h.socialSvc.Replies(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rows)
}

// DeleteComment 删评论（仅作者）
// @Summary 删评论
// @Tags 社交
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid comment id")
		return
	}
	if err := h.socialSvc.DeleteComment(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Bookmark 收藏
// @Summary 收藏帖子
// @Tags 社交
// @Security BearerAuth
// @Param post_id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/bookmarks/{post_id} [post]
func (h *Handler) Bookmark(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.socialSvc.Bookmark(c.Request.Context(), middleware.CurrentUserID(c), postID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Unbookmark 取消收藏
// @Summary 取消收藏
// @Tags 社交
// @Security BearerAuth
// @Param post_id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/bookmarks/{post_id} [delete]
func (h *Handler) Unbookmark(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		response.BadRequest(c, "invalid post id")
		return
	}
	if err := h.socialSvc.Unbookmark(c.Request.Context(), middleware.CurrentUserID(c), postID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Bookmarks 收藏列表
// @Summary 收藏列表
// @Tags 社交
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/bookmarks [get]
func (h *Handler) Bookmarks(c *gin.Context) {
	page, limit := pageParams(c)
	rows, meta, err := h.socialSvc.Bookmarks(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, rows, meta)
}
