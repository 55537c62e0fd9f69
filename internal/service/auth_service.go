// Package service implements Billmate's application operations on top of the
// storage boundary: authentication, bill CRUD with activity logging, the
// pairing handshake, and notification preferences.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"billmate/internal/auth"
	"billmate/internal/models"
	"billmate/internal/storage"
)

// AuthService handles registration, sign-in and profile management.
type AuthService struct {
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwt *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{authenticator: authenticator, jwt: jwt, store: store}
}

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignUp registers a new account and returns an authenticated session.
func (s *AuthService) SignUp(ctx context.Context, email, displayName, password string) (*Session, error) {
	if email == "" || displayName == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		slog.Warn("SignUp failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// SignIn authenticates an existing account.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("SignIn failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User signed in", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// GetProfile returns the user's profile.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// UpdateProfile changes the mutable profile fields and returns the updated
// user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (*models.User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.store.UpdateUserProfile(ctx, userID, name, avatarURL); err != nil {
		slog.Error("UpdateProfile failed", "user_id", userID, "error", err)
		return nil, err
	}
	return s.store.GetUserByID(ctx, userID)
}
