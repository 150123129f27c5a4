package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/services"
	"financeapp-server/internal/utils"
)

// respondServiceError maps the service taxonomy 1:1 onto status codes.
// Anything outside the taxonomy is logged with full detail server-side and
// surfaced only as a generic failure; raw storage error text never reaches
// the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		utils.RespondError(c, utils.NewAppError(http.StatusConflict, "CONFLICT", "username already exists", nil))
	case errors.Is(err, services.ErrDuplicateEmail):
		utils.RespondError(c, utils.NewAppError(http.StatusConflict, "CONFLICT", "email already exists", nil))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil))
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "user not found", nil))
	case errors.Is(err, services.ErrExpenseNotFound):
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "expense not found", nil))
	default:
		slog.Error("unexpected error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil))
	}
}
