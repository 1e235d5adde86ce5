// Package handler exposes the auth and user HTTP endpoints. Handlers parse
// and validate request bodies, derive device/address from transport headers,
// and map core results and sentinel errors to responses; business invariants
// live in the services.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authservice "identity-service/internal/auth/service"
	"identity-service/internal/security"
	"identity-service/internal/server/middleware"
)

// AuthHandler handles the signup/login/refresh/logout/me endpoints.
type AuthHandler struct {
	auth   *authservice.AuthService
	tokens *security.TokenProvider
}

// NewAuthHandler returns an AuthHandler backed by the given auth service and
// token provider (used to bind refresh tokens to a user before calling the
// core).
func NewAuthHandler(auth *authservice.AuthService, tokens *security.TokenProvider) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"fullName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "User registered successfully",
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, deviceInfo(c), clientIP(c))
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh. The subject is taken from the verified
// refresh token itself; the core then matches the secret against stored
// sessions and rotates the matching one.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	claims, err := h.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		mapCoreError(c, err)
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), claims.Subject, req.RefreshToken, deviceInfo(c), clientIP(c))
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout handles POST /auth/logout. Requires a valid access token; the
// optional refresh token in the body selects single-device logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// Body is optional; an empty or absent body means all-devices logout.
	_ = c.ShouldBindJSON(&req)
	userID := middleware.GetUserID(c)
	if err := h.auth.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe handles GET /auth/me.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.auth.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// deviceInfo returns the client's device descriptor from the User-Agent
// header.
func deviceInfo(c *gin.Context) string {
	if ua := c.GetHeader("User-Agent"); ua != "" {
		return ua
	}
	return "Unknown Device"
}

// clientIP returns the first hop of X-Forwarded-For when present, else gin's
// best guess at the peer address.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "Unknown IP"
}
