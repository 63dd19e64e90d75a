package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"filekeeper/internal/domain"
	"filekeeper/internal/pkg/jwt"
)

type tokenService interface {
	GenerateSessionToken(username string) (string, error)
	GenerateVerificationToken(email string) (string, error)
	ValidateVerificationToken(tokenStr string) (*jwt.Claims, error)
}

// Service contains all business logic for signup, login and email
// verification.
type Service struct {
	users  UserRepositoryInterface
	tokens tokenService
	mailer Mailer
}

func NewService(users UserRepositoryInterface, tokens tokenService, mailer Mailer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		mailer: mailer,
	}
}

// Signup creates an unverified user and fires off a verification
// email. A mail failure is logged and swallowed: the user record is
// durable regardless of whether the email went out.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	exists, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameAlreadyExists
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsVerified:   false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user.Email)

	user.PasswordHash = ""
	return user, nil
}

// VerifyEmail redeems a verification token and flips the verification
// flag of the user whose email is the token subject. Redeeming a valid
// token for an already-verified user succeeds again.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateVerificationToken(token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.users.MarkVerified(ctx, user.ID)
}

// ResendVerification always reports acceptance; it only actually sends
// when the address belongs to an unverified account. Callers cannot
// probe which addresses are registered.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("verify/resend: email not found (masked)")
			return nil
		}
		return err
	}
	if user.IsVerified {
		log.Printf("verify/resend: already verified user_id=%d", user.ID)
		return nil
	}

	s.sendVerification(ctx, user.Email)
	return nil
}

// Login checks credentials and issues a session token. Unknown
// username and wrong password fail identically.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateSessionToken(user.Username)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, email string) {
	token, err := s.tokens.GenerateVerificationToken(email)
	if err != nil {
		log.Printf("verify/send: token generation failed: %v", err)
		return
	}
	if err := s.mailer.SendVerificationLink(ctx, email, token); err != nil {
		log.Printf("verify/send: mail delivery failed: %v", err)
	}
}
