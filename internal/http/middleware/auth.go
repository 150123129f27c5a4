package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/utils"
)

// Auth validates the bearer token and binds the resolved claims to the
// request. Every failure mode answers with the same 401; the client never
// learns whether the token was missing, expired or forged.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token", nil))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token", nil))
			c.Abort()
			return
		}

		auth.Bind(c, claims)
		c.Next()
	}
}
