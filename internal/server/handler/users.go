package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"identity-service/internal/server/middleware"
	userdomain "identity-service/internal/user/domain"
	userservice "identity-service/internal/user/service"
)

// UsersHandler handles profile and admin user endpoints.
type UsersHandler struct {
	users *userservice.UserService
}

// NewUsersHandler returns a UsersHandler backed by the given user service.
func NewUsersHandler(users *userservice.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// GetProfile handles GET /users/profile.
func (h *UsersHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /users/profile.
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req.FullName)
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users (admin).
func (h *UsersHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	res, err := h.users.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUserByID handles GET /users/:id (admin).
func (h *UsersHandler) GetUserByID(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserByID handles PATCH /users/:id (admin).
func (h *UsersHandler) UpdateUserByID(c *gin.Context) {
	var req struct {
		FullName *string `json:"fullName"`
		Role     *string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
		Active   *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	update := userservice.UserUpdate{FullName: req.FullName, Active: req.Active}
	if req.Role != nil {
		role := userdomain.Role(*req.Role)
		update.Role = &role
	}
	user, err := h.users.UpdateUserByID(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUserByID handles DELETE /users/:id (admin). Soft delete.
func (h *UsersHandler) DeleteUserByID(c *gin.Context) {
	if err := h.users.DeleteUserByID(c.Request.Context(), c.Param("id")); err != nil {
		mapCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
