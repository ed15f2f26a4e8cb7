package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/highlowbuffalo/internal/api"
	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/service"
	"github.com/mmynk/highlowbuffalo/internal/storage/sqlite"
	"github.com/mmynk/highlowbuffalo/internal/syncer"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	srv := httptest.NewServer(api.NewRouter(api.Config{
		Auth:          service.NewAuthService(auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost), jwtManager, nil),
		Reflections:   service.NewReflectionService(store, nil),
		Users:         service.NewUserService(store, nil),
		Herds:         service.NewHerdService(store, nil),
		Notifications: service.NewNotificationService(store, nil),
		JWT:           jwtManager,
		Store:         store,
	}))
	t.Cleanup(srv.Close)
	return srv
}

// signedIn registers email and returns a client holding its token.
func signedIn(t *testing.T, baseURL, email, name string) (*Client, *models.User) {
	t.Helper()
	ctx := context.Background()

	anon := New(Config{BaseURL: baseURL, Timeout: 5 * time.Second})
	user, err := anon.Signup(ctx, email, "password123", name)
	require.NoError(t, err)
	token, err := anon.Login(ctx, email, "password123")
	require.NoError(t, err)

	return New(Config{BaseURL: baseURL, Token: token.AccessToken, Timeout: 5 * time.Second}), user
}

func TestClientRoundTrip(t *testing.T) {
	srv := newTestAPI(t)
	ctx := context.Background()

	alice, _ := signedIn(t, srv.URL, "alice@example.com", "Alice")
	bob, bobUser := signedIn(t, srv.URL, "bob@example.com", "Bob")

	friend, err := alice.AddFriend(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bobUser.ID, friend.ID)

	created, err := alice.CreateReflection(ctx, reflection.Draft{
		High: "finished the book", Low: "missed the bus", Buffalo: "a duck in the office",
		SharedWith: []string{bobUser.ID},
	})
	require.NoError(t, err)

	feed, err := bob.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Alice", feed[0].AuthorDisplayName)

	reacted, err := bob.ToggleReaction(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{bobUser.ID}, reacted.CuriosityReactions["curiosity"])

	flagged, err := bob.ToggleFlag(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, flagged.IsFlaggedForFollowUp)

	high := "finished two books"
	updated, err := alice.UpdateReflection(ctx, created.ID, reflection.Patch{High: &high})
	require.NoError(t, err)
	assert.Equal(t, high, updated.High)

	herd, err := alice.CreateHerd(ctx, "Book Club", nil)
	require.NoError(t, err)
	herd, err = alice.AddHerdMember(ctx, herd.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, herd.Members, 2)

	herds, err := bob.ListHerds(ctx)
	require.NoError(t, err)
	assert.Len(t, herds, 1)

	settings, err := alice.SaveSettings(ctx, models.UserSettings{NotificationCadence: models.CadenceWeekly})
	require.NoError(t, err)
	assert.Equal(t, models.CadenceWeekly, settings.NotificationCadence)

	status, err := alice.NotificationStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.ReminderNeeded)

	require.NoError(t, alice.DeleteReflection(ctx, created.ID))
	own, err := alice.ListReflections(ctx)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestClientErrorKinds(t *testing.T) {
	srv := newTestAPI(t)
	ctx := context.Background()

	alice, _ := signedIn(t, srv.URL, "alice@example.com", "Alice")

	_, err := alice.ToggleFlag(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
	assert.Contains(t, apperr.MessageOf(err), "not found")

	_, err = alice.CreateReflection(ctx, reflection.Draft{High: "only"})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)

	_, err = alice.AddFriend(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	anon := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	_, err = anon.ListReflections(ctx)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized), "got %v", err)
}

func TestClientFailsFastWhenServerIsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New(Config{BaseURL: "http://" + addr, Token: "tok", HTTPClient: &http.Client{Timeout: time.Second}})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.ListReflections(ctx)
		require.True(t, errors.Is(err, apperr.ErrTransport), "got %v", err)
	}

	// The breaker is open now; the call fails without dialing.
	_, err = c.Feed(ctx)
	require.True(t, errors.Is(err, apperr.ErrTransport))
	assert.Contains(t, apperr.MessageOf(err), "unavailable")
}

func TestClientDrivesAdapter(t *testing.T) {
	srv := newTestAPI(t)
	ctx := context.Background()

	alice, aliceUser := signedIn(t, srv.URL, "alice@example.com", "Alice")
	adapter := syncer.New(alice, aliceUser.ID, nil)

	created, err := adapter.Create(ctx, reflection.Draft{High: "h", Low: "l", Buffalo: "b"})
	require.NoError(t, err)
	require.NoError(t, adapter.Load(ctx))

	view := adapter.View("all")
	require.Len(t, view, 1)
	assert.Equal(t, created.ID, view[0].ID)

	flagged, err := adapter.ToggleFlag(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, flagged.IsFlaggedForFollowUp)
}
