package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/refdata"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/service"
	"github.com/mmynk/highlowbuffalo/internal/syncer"
)

var (
	_ syncer.Backend = (*Client)(nil)
	_ refdata.Source = (*Client)(nil)
)

// Auth

func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": password, "full_name": fullName,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (service.Token, error) {
	var token service.Token
	err := c.do(ctx, http.MethodPost, "/auth/token", map[string]string{
		"email": email, "password": password,
	}, &token)
	return token, err
}

// Reflections

func (c *Client) ListReflections(ctx context.Context) ([]*models.Reflection, error) {
	return c.reflections(ctx, "/reflections/")
}

func (c *Client) Feed(ctx context.Context) ([]*models.Reflection, error) {
	return c.reflections(ctx, "/reflections/feed")
}

func (c *Client) FollowUps(ctx context.Context) ([]*models.Reflection, error) {
	return c.reflections(ctx, "/reflections/follow-ups")
}

func (c *Client) reflections(ctx context.Context, path string) ([]*models.Reflection, error) {
	var rs []*models.Reflection
	if err := c.do(ctx, http.MethodGet, path, nil, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (c *Client) CreateReflection(ctx context.Context, draft reflection.Draft) (*models.Reflection, error) {
	return c.reflection(ctx, http.MethodPost, "/reflections/", draft)
}

func (c *Client) UpdateReflection(ctx context.Context, id string, patch reflection.Patch) (*models.Reflection, error) {
	return c.reflection(ctx, http.MethodPut, "/reflections/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteReflection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reflections/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ToggleReaction(ctx context.Context, id, kind string) (*models.Reflection, error) {
	return c.reflection(ctx, http.MethodPost, "/reflections/"+url.PathEscape(id)+"/react", map[string]string{"type": kind})
}

func (c *Client) ToggleFlag(ctx context.Context, id string) (*models.Reflection, error) {
	return c.reflection(ctx, http.MethodPost, "/reflections/"+url.PathEscape(id)+"/flag", nil)
}

func (c *Client) reflection(ctx context.Context, method, path string, body any) (*models.Reflection, error) {
	var r models.Reflection
	if err := c.do(ctx, method, path, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Users

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetSettings(ctx context.Context) (models.UserSettings, error) {
	var settings models.UserSettings
	err := c.do(ctx, http.MethodGet, "/users/me/settings", nil, &settings)
	return settings, err
}

func (c *Client) SaveSettings(ctx context.Context, settings models.UserSettings) (models.UserSettings, error) {
	var saved models.UserSettings
	err := c.do(ctx, http.MethodPut, "/users/me/settings", settings, &saved)
	return saved, err
}

func (c *Client) ListFriends(ctx context.Context) ([]models.Friend, error) {
	var friends []models.Friend
	if err := c.do(ctx, http.MethodGet, "/users/friends", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) AddFriend(ctx context.Context, email string) (models.Friend, error) {
	var friend models.Friend
	err := c.do(ctx, http.MethodPost, "/users/friends", map[string]string{"email": email}, &friend)
	return friend, err
}

func (c *Client) RemoveFriend(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodDelete, "/users/friends/"+url.PathEscape(friendID), nil, nil)
}

// Herds

type herdBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (c *Client) ListHerds(ctx context.Context) ([]*models.Herd, error) {
	var herds []*models.Herd
	if err := c.do(ctx, http.MethodGet, "/herds/", nil, &herds); err != nil {
		return nil, err
	}
	return herds, nil
}

func (c *Client) CreateHerd(ctx context.Context, name string, description *string) (*models.Herd, error) {
	return c.herd(ctx, http.MethodPost, "/herds/", herdBody{Name: name, Description: description})
}

func (c *Client) GetHerd(ctx context.Context, herdID string) (*models.Herd, error) {
	return c.herd(ctx, http.MethodGet, "/herds/"+url.PathEscape(herdID), nil)
}

func (c *Client) UpdateHerd(ctx context.Context, herdID, name string, description *string) (*models.Herd, error) {
	return c.herd(ctx, http.MethodPut, "/herds/"+url.PathEscape(herdID), herdBody{Name: name, Description: description})
}

func (c *Client) DeleteHerd(ctx context.Context, herdID string) error {
	return c.do(ctx, http.MethodDelete, "/herds/"+url.PathEscape(herdID), nil, nil)
}

func (c *Client) AddHerdMember(ctx context.Context, herdID, email string) (*models.Herd, error) {
	return c.herd(ctx, http.MethodPost, "/herds/"+url.PathEscape(herdID)+"/members", map[string]string{"email": email})
}

func (c *Client) RemoveHerdMember(ctx context.Context, herdID, userID string) (*models.Herd, error) {
	return c.herd(ctx, http.MethodDelete, "/herds/"+url.PathEscape(herdID)+"/members/"+url.PathEscape(userID), nil)
}

func (c *Client) herd(ctx context.Context, method, path string, body any) (*models.Herd, error) {
	var h models.Herd
	if err := c.do(ctx, method, path, body, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Notifications

func (c *Client) NotificationStatus(ctx context.Context) (service.ReminderStatus, error) {
	var status service.ReminderStatus
	err := c.do(ctx, http.MethodGet, "/notifications/status", nil, &status)
	return status, err
}
