package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/auth"
	"github.com/psgpraveen/PolicyPilot/internal/store"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles signup and login on top of the credential store.
type AuthService struct {
	users             store.UserStore
	tokens            *auth.Manager
	logger            *zap.Logger
	metrics           *metrics.MetricsCollector
	passwordMinLength int
}

func NewAuthService(users store.UserStore, tokens *auth.Manager, logger *zap.Logger, metricsCollector *metrics.MetricsCollector, passwordMinLength int) *AuthService {
	if passwordMinLength <= 0 {
		passwordMinLength = 6
	}
	return &AuthService{
		users:             users,
		tokens:            tokens,
		logger:            logger.With(zap.String("service", "auth")),
		metrics:           metricsCollector,
		passwordMinLength: passwordMinLength,
	}
}

// Signup validates the input, rejects duplicate emails and creates the
// user with a bcrypt password hash. Returns the new user identity.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (string, error) {
	var v violations
	if !minLength(input.Name, 2) {
		v.add("name", "Name must be at least 2 characters")
	}
	if !validEmail(input.Email) {
		v.add("email", "Invalid email address")
	}
	if len(input.Password) < s.passwordMinLength {
		v.add("password", fmt.Sprintf("Password must be at least %d characters", s.passwordMinLength))
	}
	if err := v.err(); err != nil {
		return "", err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return "", store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID))
	s.metrics.IncrementCounter("auth.signup", nil)
	return user.ID, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *store.User, error) {
	var v violations
	if !validEmail(email) {
		v.add("email", "Invalid email address")
	}
	if password == "" {
		v.add("password", "Password is required")
	}
	if err := v.err(); err != nil {
		return "", nil, err
	}

	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.IncrementCounter("auth.login_failed", nil)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.logger.Warn("Invalid password", zap.String("user_id", user.ID))
		s.metrics.IncrementCounter("auth.login_failed", nil)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	s.metrics.IncrementCounter("auth.login", nil)
	return token, user, nil
}
