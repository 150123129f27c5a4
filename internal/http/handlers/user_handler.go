package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/models"
	"financeapp-server/internal/services"
	"financeapp-server/internal/utils"
)

const adminRole = "Admin"

type UserHandler struct {
	auth *services.AuthService
}

type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Role     string `json:"role" binding:"omitempty,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// List returns all users. Admin only.
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	claims, ok := auth.Current(c)
	if !ok || claims.Role != adminRole {
		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "FORBIDDEN", "admin role required", nil))
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetByID returns one user. Callers may read themselves; admins anyone.
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.authorizeTarget(c)
	if !ok {
		return
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update overwrites username, email and role of the target user.
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.authorizeTarget(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	user := &models.User{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	}
	if user.Role == "" {
		user.Role = models.DefaultRole
	}

	if err := h.auth.UpdateUser(c.Request.Context(), user); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// ChangePassword verifies the current password and stores a new hash. The
// new-password confirmation check lives here at the boundary, by design.
// POST /api/users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := h.authorizeTarget(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Delete removes the target user. Idempotent: a missing id still answers 204.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.authorizeTarget(c)
	if !ok {
		return
	}

	if err := h.auth.DeleteUser(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorizeTarget parses the :id parameter and enforces the self-or-admin
// rule shared by the per-user routes.
func (h *UserHandler) authorizeTarget(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondValidationError(c, "invalid user id")
		return 0, false
	}

	claims, ok := auth.Current(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil))
		return 0, false
	}
	if claims.UserID != id && claims.Role != adminRole {
		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "FORBIDDEN", "not allowed", nil))
		return 0, false
	}
	return id, true
}
