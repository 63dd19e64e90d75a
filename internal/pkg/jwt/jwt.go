package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Token kinds. The kind claim keeps a session token from ever being
// accepted as an email-verification token and vice versa, even though
// both are signed with the same secret.
const (
	KindSession     = "session"
	KindEmailVerify = "email_verify"
)

// ErrInvalidToken is returned for every validation failure: bad
// signature, malformed input, expiry, missing subject, or kind
// mismatch. Callers must not be able to tell which one it was.
var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	secret     []byte
	sessionTTL time.Duration
	verifyTTL  time.Duration
}

type Claims struct {
	Kind string `json:"kind"`
	jwtlib.RegisteredClaims
}

func New(secret string, sessionTTL, verifyTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		verifyTTL:  verifyTTL,
	}
}

// GenerateSessionToken issues a bearer token whose subject is the
// username of the logged-in user.
func (s *Service) GenerateSessionToken(username string) (string, error) {
	return s.generate(KindSession, username, s.sessionTTL)
}

// GenerateVerificationToken issues an email-ownership proof whose
// subject is the address being verified.
func (s *Service) GenerateVerificationToken(email string) (string, error) {
	return s.generate(KindEmailVerify, email, s.verifyTTL)
}

func (s *Service) generate(kind, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateSessionToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, KindSession)
}

func (s *Service) ValidateVerificationToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, KindEmailVerify)
}

func (s *Service) validate(tokenStr, kind string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
