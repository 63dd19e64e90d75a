package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"filekeeper/internal/domain"
	"filekeeper/internal/pkg/jwt"
)

type stubUserResolver struct {
	users map[string]*domain.User
}

func (s *stubUserResolver) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestRouter(tokens *jwt.Service, users UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(tokens, users))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetInt64("user_id"),
			"username": c.GetString("username"),
		})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokens := jwt.New("test-secret-123", 1*time.Hour, 1*time.Hour)
	validToken, _ := tokens.GenerateSessionToken("alice")

	router := newTestRouter(tokens, &stubUserResolver{users: map[string]*domain.User{
		"alice": {ID: 42, Username: "alice"},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "alice")
}

func TestJWTAuth_UniformRejection(t *testing.T) {
	tokens := jwt.New("test-secret-123", 1*time.Hour, 1*time.Hour)
	resolver := &stubUserResolver{users: map[string]*domain.User{
		"alice": {ID: 42, Username: "alice"},
	}}
	router := newTestRouter(tokens, resolver)

	otherSecret := jwt.New("wrong-secret", 1*time.Hour, 1*time.Hour)
	forged, _ := otherSecret.GenerateSessionToken("alice")
	expired, _ := jwt.New("test-secret-123", -1*time.Minute, 1*time.Hour).GenerateSessionToken("alice")
	ghost, _ := tokens.GenerateSessionToken("nobody")
	verifyKind, _ := tokens.GenerateVerificationToken("alice@example.com")

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dGVzdA=="},
		{"empty token", "Bearer "},
		{"garbage", "Bearer invalid-jwt-here"},
		{"forged signature", "Bearer " + forged},
		{"expired", "Bearer " + expired},
		{"unknown user", "Bearer " + ghost},
		{"verification token as session", "Bearer " + verifyKind},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			// Every failure path must be indistinguishable.
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			assert.Contains(t, w.Body.String(), "Invalid credentials or token")
		})
	}
}
