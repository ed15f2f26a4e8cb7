package auth

import (
	"context"
	"strings"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrWeakPassword       = apperr.Validation("password must be at least %d characters", MinPasswordLength)
	ErrEmailExists        = apperr.Conflict("email already registered")
)

// Authenticator is the account side of signup and login used by AuthService.
type Authenticator interface {
	// Register creates an account. Returns ErrEmailExists or ErrWeakPassword.
	Register(ctx context.Context, email, displayName, password string) (*models.User, error)
	// Authenticate returns the account for email, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// NormalizeEmail lowercases and trims an email so friend and herd lookups
// match the address stored at signup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
