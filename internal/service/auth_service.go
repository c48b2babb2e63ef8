package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wayfarer-app/wayfarer/internal/auth"
	"github.com/wayfarer-app/wayfarer/internal/models"
)

// AuthService bundles registration and login into session issuance.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.JWTManager
}

// NewAuthService creates an auth service.
func NewAuthService(authenticator *auth.PasswordAuthenticator, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
	}
}

// Session is an authenticated user plus their bearer token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}

	user, err := s.authenticator.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
	return &Session{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{User: user, Token: token}, nil
}
