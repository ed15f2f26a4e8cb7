package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// Token is the response of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthService handles signup and token issue.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        orDefault(logger),
	}
}

// Signup creates a new user account.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string) (*models.User, error) {
	s.logger.Info("Signup request", "email", email)

	// Validate input
	if strings.TrimSpace(email) == "" {
		return nil, apperr.Validation("email is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, apperr.Validation("full_name is required")
	}

	user, err := s.authenticator.Register(ctx, email, fullName, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		return nil, storeErr(err, "failed to register")
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login authenticates a user and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return Token{}, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return Token{}, auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return Token{}, apperr.Internal(err, "failed to issue token")
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtManager.TokenDuration().Seconds()),
	}, nil
}
