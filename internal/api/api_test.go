package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/highlowbuffalo/internal/api/render"
	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/service"
	"github.com/mmynk/highlowbuffalo/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	srv := httptest.NewServer(NewRouter(Config{
		Auth:          service.NewAuthService(authenticator, jwtManager, nil),
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

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path string, body any, out any) int {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// login signs up a user and returns a client holding their token.
func login(t *testing.T, srv *httptest.Server, email, name string) (*apiClient, *models.User) {
	t.Helper()
	c := &apiClient{t: t, base: srv.URL + "/api/v1"}

	var user models.User
	status := c.do(http.MethodPost, "/auth/signup",
		map[string]string{"email": email, "password": "password123", "full_name": name}, &user)
	require.Equal(t, http.StatusCreated, status)

	var token service.Token
	status = c.do(http.MethodPost, "/auth/token",
		map[string]string{"email": email, "password": "password123"}, &token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bearer", token.TokenType)
	c.token = token.AccessToken
	return c, &user
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	_, _ = login(t, srv, "alice@example.com", "Alice")

	c := &apiClient{t: t, base: srv.URL + "/api/v1"}

	t.Run("duplicate signup", func(t *testing.T) {
		var body render.ErrorBody
		status := c.do(http.MethodPost, "/auth/signup",
			map[string]string{"email": "alice@example.com", "password": "password123", "full_name": "Again"}, &body)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, apperr.KindConflict, body.Code)
	})

	t.Run("invalid signup body", func(t *testing.T) {
		var body render.ErrorBody
		status := c.do(http.MethodPost, "/auth/signup", map[string]string{"email": "not-an-email"}, &body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body.Error, "email")
	})

	t.Run("wrong password", func(t *testing.T) {
		status := c.do(http.MethodPost, "/auth/token",
			map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("form token", func(t *testing.T) {
		form := url.Values{"username": {"alice@example.com"}, "password": {"password123"}}
		resp, err := http.Post(srv.URL+"/api/v1/auth/token", "application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		var body render.ErrorBody
		status := c.do(http.MethodGet, "/reflections/", nil, &body)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, apperr.KindUnauthorized, body.Code)
	})
}

func TestReflectionRoutes(t *testing.T) {
	srv := newTestServer(t)
	alice, aliceUser := login(t, srv, "alice@example.com", "Alice")
	bob, bobUser := login(t, srv, "bob@example.com", "Bob")

	var friend models.Friend
	require.Equal(t, http.StatusCreated,
		alice.do(http.MethodPost, "/users/friends", map[string]string{"email": "bob@example.com"}, &friend))
	assert.Equal(t, bobUser.ID, friend.ID)

	var created models.Reflection
	status := alice.do(http.MethodPost, "/reflections/", map[string]any{
		"high": "sunny walk", "low": "rainy commute", "buffalo": "saw a heron",
		"sharedWith": []string{bobUser.ID},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, aliceUser.ID, created.AuthorID)
	assert.Equal(t, "Alice", created.AuthorDisplayName)

	t.Run("author list", func(t *testing.T) {
		var list []models.Reflection
		require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/reflections/", nil, &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("friend feed", func(t *testing.T) {
		var feed []models.Reflection
		require.Equal(t, http.StatusOK, bob.do(http.MethodGet, "/reflections/feed", nil, &feed))
		require.Len(t, feed, 1)

		var empty []models.Reflection
		require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/reflections/feed", nil, &empty))
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("react toggles", func(t *testing.T) {
		var r models.Reflection
		require.Equal(t, http.StatusOK,
			bob.do(http.MethodPost, "/reflections/"+created.ID+"/react", map[string]string{"type": "curious"}, &r))
		assert.Equal(t, []string{bobUser.ID}, r.CuriosityReactions["curiosity"])

		require.Equal(t, http.StatusOK,
			bob.do(http.MethodPost, "/reflections/"+created.ID+"/react", map[string]string{"type": "curious"}, &r))
		assert.Empty(t, r.CuriosityReactions["curiosity"])
	})

	t.Run("flag and follow-ups", func(t *testing.T) {
		var r models.Reflection
		require.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/reflections/"+created.ID+"/flag", nil, &r))
		assert.True(t, r.IsFlaggedForFollowUp)

		var followUps []models.Reflection
		require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/reflections/follow-ups", nil, &followUps))
		assert.Len(t, followUps, 1)
	})

	t.Run("update by non-owner", func(t *testing.T) {
		var body render.ErrorBody
		status := bob.do(http.MethodPut, "/reflections/"+created.ID, map[string]string{"high": "hijack"}, &body)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("update and delete", func(t *testing.T) {
		var r models.Reflection
		require.Equal(t, http.StatusOK,
			alice.do(http.MethodPut, "/reflections/"+created.ID, map[string]string{"high": "sunnier walk"}, &r))
		assert.Equal(t, "sunnier walk", r.High)
		assert.Equal(t, "rainy commute", r.Low)

		assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, "/reflections/"+created.ID, nil, nil))

		var list []models.Reflection
		require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/reflections/", nil, &list))
		assert.Empty(t, list)
	})

	t.Run("invalid draft", func(t *testing.T) {
		var body render.ErrorBody
		status := alice.do(http.MethodPost, "/reflections/", map[string]string{"high": "only high"}, &body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, apperr.KindValidation, body.Code)
	})
}

func TestUserAndHerdRoutes(t *testing.T) {
	srv := newTestServer(t)
	alice, _ := login(t, srv, "alice@example.com", "Alice")
	bob, bobUser := login(t, srv, "bob@example.com", "Bob")

	var settings models.UserSettings
	require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/users/me/settings", nil, &settings))
	assert.Equal(t, models.CadenceDaily, settings.NotificationCadence)

	status := alice.do(http.MethodPut, "/users/me/settings", map[string]string{"notificationCadence": "hourly"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, http.StatusOK,
		alice.do(http.MethodPut, "/users/me/settings", map[string]string{"notificationCadence": "paused"}, &settings))
	assert.Equal(t, models.CadencePaused, settings.NotificationCadence)

	var reminder service.ReminderStatus
	require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/notifications/status", nil, &reminder))
	assert.False(t, reminder.ReminderNeeded)
	assert.Equal(t, service.MessagePaused, reminder.Message)

	var me models.User
	require.Equal(t, http.StatusOK, alice.do(http.MethodPut, "/users/me", map[string]string{"full_name": "Alice B"}, &me))
	assert.Equal(t, "Alice B", me.DisplayName)

	var herd models.Herd
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/herds/", map[string]string{"name": "Family"}, &herd))
	require.Equal(t, http.StatusOK,
		alice.do(http.MethodPost, "/herds/"+herd.ID+"/members", map[string]string{"email": "bob@example.com"}, &herd))
	assert.Len(t, herd.Members, 2)

	var herds []models.Herd
	require.Equal(t, http.StatusOK, bob.do(http.MethodGet, "/herds/", nil, &herds))
	assert.Len(t, herds, 1)

	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodDelete, "/herds/"+herd.ID, nil, nil))

	require.Equal(t, http.StatusOK, bob.do(http.MethodDelete, "/herds/"+herd.ID+"/members/"+bobUser.ID, nil, &herd))
	assert.Len(t, herd.Members, 1)

	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, "/herds/"+herd.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, "/herds/"+herd.ID, nil, nil))
}
