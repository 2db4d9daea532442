package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfi-backend/pkg/auth"
	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

type tokenRequest struct {
	UserID        int64  `json:"user_id" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
	Secret        string `json:"secret" binding:"required"`
}

// IssueToken 签发访问 token（钱包签名校验在网关侧完成）
// @Summary 签发 token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body tokenRequest true "签发信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if h.cfg.Auth.AppSecretHash == "" || !auth.CheckAppSecret(h.cfg.Auth.AppSecretHash, req.Secret) {
		response.Unauthorized(c, "bad secret")
		return
	}
	token, err := auth.GenerateToken(req.UserID, req.WalletAddress, h.cfg.Auth.JWTSecret, h.cfg.Auth.TokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// 签发即视为一次登录
	_ = h.userSvc.TouchLastLogin(c.Request.Context(), req.UserID)
	response.Success(c, gin.H{"token": token})
}
