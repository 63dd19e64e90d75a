package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"filekeeper/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/verify-email", h.VerifyEmail)
		authGroup.POST("/verify-email/resend", h.ResendVerification)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
	}
}

// Signup godoc
// @Summary Register a new user
// @Description Creates an unverified account and sends a verification link to the given address.
// @Tags Auth
// @Param request body SignupRequest true "username, email, password"
// @Success 201 {object} map[string]interface{}
// @Failure 400,409,500 {object} map[string]interface{}
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrUsernameAlreadyExists):
			response.Error(c, http.StatusConflict, "USERNAME_EXISTS", "This username is already taken")
		default:
			response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": UserPublic{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
		"message": "User created successfully",
	})
}

// Login godoc
// @Summary Log in
// @Description Exchanges username and password for a bearer session token.
// @Tags Auth
// @Param request body LoginRequest true "username, password"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserPublic{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
		"access_token": token,
		"token_type":   "bearer",
	})
}

// VerifyEmail godoc
// @Summary Redeem an email-verification token
// @Tags Auth
// @Param token query string true "verification token from the emailed link"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,500 {object} map[string]interface{}
// @Router /auth/verify-email [get]
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", "Token is invalid or expired")
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", "Token is invalid or expired")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "VERIFICATION_FAILED", "Failed to verify email")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Email verified successfully",
	})
}

// ResendVerification godoc
// @Summary Re-send the verification email
// @Description Always answers accepted; a mail goes out only for unverified accounts.
// @Tags Auth
// @Param request body ResendVerificationRequest true "email"
// @Success 202 {object} map[string]interface{}
// @Failure 400,500 {object} map[string]interface{}
// @Router /auth/verify-email/resend [post]
func (h *Handler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, http.StatusInternalServerError, "RESEND_FAILED", "Failed to resend verification email")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"status": "accepted",
	})
}

// GetMe godoc
// @Summary Current user profile
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401,404 {object} map[string]interface{}
// @Router /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials or token")
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserPublic{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	})
}
