package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfi-backend/internal/api/middleware"
	"github.com/d60-Lab/socialfi-backend/internal/service"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

// Register 注册用户
// @Summary 注册用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body service.CreateUserInput true "用户信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users [post]
func (h *Handler) Register(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userSvc.Register(c.Request.Context(), req)
	if errors.Is(err, service.ErrUsernameTaken) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// GetUser 查询用户
// @Summary 查询用户
// @Tags 用户
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.userSvc.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// GetUserByWallet 按钱包地址查询用户
// @Summary 按钱包地址查询用户
// @Tags 用户
// @Param address path string true "钱包地址"
// @Success 200 {object} response.Response
// @Router /api/v1/users/wallet/{address} [get]
func (h *Handler) GetUserByWallet(c *gin.Context) {
	u, err := h.userSvc.GetByWallet(c.Request.Context(), c.Param("address"))
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// GetUserByUsername 按用户名查询用户
// @Summary 按用户名查询用户
// @Tags 用户
// @Param username path string true "用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/users/username/{username} [get]
func (h *Handler) GetUserByUsername(c *gin.Context) {
	u, err := h.userSvc.GetByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateUser 更新本人资料
// @Summary 更新本人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body service.UpdateUserInput true "更新字段"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	if middleware.CurrentUserID(c) != id {
		response.Forbidden(c, "cannot update another user")
		return
	}
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userSvc.Update(c.Request.Context(), id, req)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if errors.Is(err, service.ErrUsernameTaken) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// Followers 粉丝列表
// @Summary 粉丝列表
// @Tags 用户
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/users/{id}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	page, limit := pageParams(c)
	users, meta, err := h.userSvc.Followers(c.Request.Context(), id, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, users, meta)
}

// Following 关注列表
// @Summary 关注列表
// @Tags 用户
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/users/{id}/following [get]
func (h *Handler) Following(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	page, limit := pageParams(c)
	users, meta, err := h.userSvc.Following(c.Request.Context(), id, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paginated(c, users, meta)
}

// UserStats 用户统计
// @Summary 用户统计
// @Tags 用户
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id}/stats [get]
func (h *Handler) UserStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}
	st, err := h.userSvc.Stats(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, st)
}

// CheckUsername 用户名可用性
// @Summary 用户名可用性
// @Tags 用户
// @Param username query string true "用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/users/check-username [get]
func (h *Handler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.BadRequest(c, "username required")
		return
	}
	available, err := h.userSvc.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"available": available})
}
