package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	authservice "identity-service/internal/auth/service"
	"identity-service/internal/security"
	userservice "identity-service/internal/user/service"
)

// failJSON writes the stable machine-readable error shape.
func failJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

func badRequest(c *gin.Context, message string) {
	failJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// mapCoreError translates auth/user core sentinel errors to a status code and
// a stable code string. Unrecognized errors become 500 and are logged without
// leaking detail to the client.
func mapCoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authservice.ErrEmailInUse):
		failJSON(c, http.StatusConflict, "EMAIL_IN_USE", "Email already in use")
	case errors.Is(err, authservice.ErrInvalidCredentials):
		failJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, authservice.ErrForbidden):
		failJSON(c, http.StatusForbidden, "FORBIDDEN", "Invalid refresh token")
	case errors.Is(err, authservice.ErrInvalidRefreshToken):
		failJSON(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
	case errors.Is(err, security.ErrExpiredToken):
		failJSON(c, http.StatusUnauthorized, "EXPIRED_TOKEN", "Token has expired")
	case errors.Is(err, security.ErrInvalidToken):
		failJSON(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	case errors.Is(err, authservice.ErrUserNotFound), errors.Is(err, userservice.ErrUserNotFound):
		failJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		failJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
