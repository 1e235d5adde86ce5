// Package middleware provides auth, RBAC, CORS, and telemetry middleware for
// the HTTP server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"identity-service/internal/security"
	userdomain "identity-service/internal/user/domain"
)

// Context keys set by RequireAuth and read by handlers.
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

const bearerPrefix = "bearer "

// RequireAuth validates the Bearer (access) token from the Authorization
// header and sets user_id and user_role in the gin context. Requests without
// a valid access token are rejected with 401.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		claims, err := tokens.VerifyAccess(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose access token does not carry the ADMIN
// role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		if role != string(userdomain.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "FORBIDDEN",
				"message": "admin role required",
			})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by RequireAuth, or "".
func GetUserID(c *gin.Context) string {
	v, _ := c.Get(ContextUserID)
	s, _ := v.(string)
	return s
}

func extractBearer(c *gin.Context) string {
	v := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "UNAUTHORIZED",
		"message": "missing or invalid authorization",
	})
}
