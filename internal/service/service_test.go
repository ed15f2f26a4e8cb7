package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/storage/sqlite"
)

// testEnv wires every service onto one temp-file database.
type testEnv struct {
	store         *sqlite.SQLiteStore
	reflections   *ReflectionService
	herds         *HerdService
	users         *UserService
	notifications *NotificationService
	auth          *AuthService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	return &testEnv{
		store:         store,
		reflections:   NewReflectionService(store, nil),
		herds:         NewHerdService(store, nil),
		users:         NewUserService(store, nil),
		notifications: NewNotificationService(store, nil),
		auth:          NewAuthService(authenticator, auth.NewJWTManager("test-secret", time.Hour), nil),
	}
}

func (e *testEnv) signup(t *testing.T, email, name string) *models.User {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), email, "password123", name)
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", email, err)
	}
	return user
}

// fixedClock returns a Clock that starts at t and advances by step per call.
func fixedClock(t time.Time, step time.Duration) Clock {
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}
