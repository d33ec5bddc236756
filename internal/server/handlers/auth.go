package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartshelf/config"
	"smartshelf/internal/server/middleware"
	"smartshelf/internal/utils"
)

type AuthHTTPHandler struct {
	cfg config.AuthConfig
}

func NewAuthHTTPHandler(cfg config.AuthConfig) *AuthHTTPHandler {
	return &AuthHTTPHandler{cfg: cfg}
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Verify handles POST /api/auth/verify: checks a token against the internal
// secret only, without requiring an authenticated request.
func (h *AuthHTTPHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Token is required")
		return
	}

	claims, err := utils.ParseToken(req.Token, []byte(h.cfg.InternalSecret))
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	success(c, gin.H{
		"valid": true,
		"user":  claims,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHTTPHandler) Me(c *gin.Context) {
	success(c, gin.H{"user": middleware.Claims(c)})
}

// Refresh handles POST /api/auth/refresh: re-issues an internal token from
// the caller's email claim.
func (h *AuthHTTPHandler) Refresh(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil || claims.Email == "" {
		fail(c, http.StatusForbidden, "Invalid or expired token.")
		return
	}

	token, expiresAt, err := utils.GenerateToken(claims.Email, []byte(h.cfg.InternalSecret), h.cfg.TokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
	})
}
