package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizforge/domain/core"
	"quizforge/internal"
	"quizforge/models"
	"quizforge/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and access-token resolution.
// Tokens are self-contained: verification never touches storage, only the
// subsequent user lookup does.
type AuthService struct {
	users    ports.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *internal.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users ports.UserRepository, secret string, tokenTTL time.Duration, log *internal.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, core.NewInvalidRequestError("a valid email is required")
	}
	if username == "" {
		return nil, core.NewInvalidRequestError("a username is required")
	}
	if len(password) < 8 {
		return nil, core.NewInvalidRequestError("password must be at least 8 characters")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, core.NewInvalidRequestError("email already registered")
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, core.NewInvalidRequestError("username already taken")
	} else if !core.IsNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		Username:       username,
		HashedPassword: string(hashed),
		IsActive:       true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("registered user %s", user.ID)
	return user, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return "", nil, fmt.Errorf("%w: invalid email or password", core.ErrInvalidCredential)
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid email or password", core.ErrInvalidCredential)
	}
	if !user.IsActive {
		return "", nil, core.NewInvalidRequestError("account is disabled")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// CurrentUser resolves a bearer token into an active user record.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, core.ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidCredential, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", core.ErrInvalidCredential)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, core.ErrUnauthenticated
	}

	return user, nil
}

// TokenTTL exposes the configured token lifetime for cookie expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
