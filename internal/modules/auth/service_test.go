package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"filekeeper/internal/domain"
	"filekeeper/internal/pkg/jwt"
)

// Mock user repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) MarkVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock token service
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateSessionToken(username string) (string, error) {
	args := m.Called(username)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) GenerateVerificationToken(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateVerificationToken(tokenStr string) (*jwt.Claims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

// Mock mailer
type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerificationLink(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

func verificationClaims(email string) *jwt.Claims {
	c := &jwt.Claims{Kind: jwt.KindEmailVerify}
	c.Subject = email
	return c
}

func TestService_Signup_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "testuser").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	tokens.On("GenerateVerificationToken", "test@example.com").Return("fake-verify-token", nil)
	mailer.On("SendVerificationLink", mock.Anything, "test@example.com", "fake-verify-token").Return(nil)

	service := NewService(userRepo, tokens, mailer)

	user, err := service.Signup(context.Background(), SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "securepass123",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.Empty(t, user.PasswordHash)

	userRepo.AssertExpectations(t)
	tokens.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestService_Signup_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("ExistsByEmail", mock.Anything, "exists@example.com").Return(true, nil)

	service := NewService(userRepo, tokens, mailer)

	user, err := service.Signup(context.Background(), SignupRequest{
		Username: "testuser",
		Email:    "exists@example.com",
		Password: "securepass123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Signup_UsernameExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	service := NewService(userRepo, tokens, mailer)

	user, err := service.Signup(context.Background(), SignupRequest{
		Username: "taken",
		Email:    "test@example.com",
		Password: "securepass123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestService_Signup_MailFailureSwallowed(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "testuser").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	tokens.On("GenerateVerificationToken", "test@example.com").Return("fake-verify-token", nil)
	mailer.On("SendVerificationLink", mock.Anything, "test@example.com", "fake-verify-token").
		Return(errors.New("smtp: connection refused"))

	service := NewService(userRepo, tokens, mailer)

	// Signup must succeed even when the relay is down.
	user, err := service.Signup(context.Background(), SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "securepass123",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	mailer.AssertExpectations(t)
}

func TestService_VerifyEmail_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	tokens.On("ValidateVerificationToken", "good-token").Return(verificationClaims("test@example.com"), nil)
	userRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&domain.User{ID: 7, Email: "test@example.com"}, nil)
	userRepo.On("MarkVerified", mock.Anything, int64(7)).Return(nil)

	service := NewService(userRepo, tokens, mailer)

	err := service.VerifyEmail(context.Background(), "good-token")

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestService_VerifyEmail_InvalidToken(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	tokens.On("ValidateVerificationToken", "bad-token").Return(nil, jwt.ErrInvalidToken)

	service := NewService(userRepo, tokens, mailer)

	err := service.VerifyEmail(context.Background(), "bad-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	userRepo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestService_VerifyEmail_UnknownUser(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	tokens.On("ValidateVerificationToken", "good-token").Return(verificationClaims("gone@example.com"), nil)
	userRepo.On("GetByEmail", mock.Anything, "gone@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(userRepo, tokens, mailer)

	err := service.VerifyEmail(context.Background(), "good-token")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	hash, err := HashPassword("securepass123")
	require.NoError(t, err)

	userRepo.On("GetByUsername", mock.Anything, "testuser").Return(&domain.User{
		ID:           1,
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
	}, nil)
	tokens.On("GenerateSessionToken", "testuser").Return("fake-jwt-token", nil)

	service := NewService(userRepo, tokens, mailer)

	user, token, err := service.Login(context.Background(), LoginRequest{
		Username: "testuser",
		Password: "securepass123",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "fake-jwt-token", token)
	assert.Empty(t, user.PasswordHash)

	tokens.AssertExpectations(t)
}

func TestService_Login_UniformFailure(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	hash, err := HashPassword("securepass123")
	require.NoError(t, err)

	userRepo.On("GetByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("GetByUsername", mock.Anything, "testuser").Return(&domain.User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: hash,
	}, nil)

	service := NewService(userRepo, tokens, mailer)

	// Unknown user and wrong password must fail identically.
	_, _, errUnknown := service.Login(context.Background(), LoginRequest{Username: "nobody", Password: "whatever"})
	_, _, errWrongPw := service.Login(context.Background(), LoginRequest{Username: "testuser", Password: "wrongpass"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "GenerateSessionToken", mock.Anything)
}

func TestService_ResendVerification_UnknownEmailAccepted(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(userRepo, tokens, mailer)

	err := service.ResendVerification(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "SendVerificationLink", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ResendVerification_AlreadyVerified(t *testing.T) {
	userRepo := new(mockUserRepo)
	tokens := new(mockTokenService)
	mailer := new(mockMailer)

	userRepo.On("GetByEmail", mock.Anything, "done@example.com").Return(&domain.User{
		ID:         3,
		Email:      "done@example.com",
		IsVerified: true,
	}, nil)

	service := NewService(userRepo, tokens, mailer)

	err := service.ResendVerification(context.Background(), "done@example.com")

	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "SendVerificationLink", mock.Anything, mock.Anything, mock.Anything)
}
