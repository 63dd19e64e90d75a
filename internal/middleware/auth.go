package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filekeeper/internal/domain"
	jwtsvc "filekeeper/internal/pkg/jwt"
	"filekeeper/internal/pkg/response"
)

// UserResolver maps a token subject to a stored user.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// JWTAuth resolves the bearer token to an authenticated user and puts
// user_id and username into the request context. Every failure path
// returns the same 401 envelope so a caller cannot tell a bad token
// from a deleted account.
func JWTAuth(tokens *jwtsvc.Service, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenStr == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.ValidateSessionToken(tokenStr)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials or token")
}
