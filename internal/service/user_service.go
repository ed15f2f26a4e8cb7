package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/storage"
)

// UserService manages the caller's profile, settings and friends.
type UserService struct {
	store  storage.UserStore
	logger *slog.Logger
	now    Clock
}

// NewUserService creates a UserService. A nil logger uses slog.Default().
func NewUserService(store storage.UserStore, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: orDefault(logger), now: systemClock}
}

// Me returns the caller's account.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "failed to load user")
	}
	return user, nil
}

// Rename changes the caller's display name.
func (s *UserService) Rename(ctx context.Context, userID, displayName string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperr.Validation("full_name must not be empty")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = displayName
	user.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Error("Rename failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to update user")
	}

	s.logger.Info("User renamed", "user_id", userID)
	return user, nil
}

// Settings returns the caller's settings, creating the defaults on first access.
func (s *UserService) Settings(ctx context.Context, userID string) (models.UserSettings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		s.logger.Error("GetSettings failed", "user_id", userID, "error", err)
		return models.UserSettings{}, storeErr(err, "failed to load settings")
	}
	return settings, nil
}

// UpdateSettings sets the caller's notification cadence.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, cadence models.Cadence) (models.UserSettings, error) {
	s.logger.Info("UpdateSettings request received", "user_id", userID, "cadence", cadence)

	if !cadence.Valid() {
		return models.UserSettings{}, apperr.Validation("notificationCadence must be one of daily, weekly, paused")
	}
	settings := models.UserSettings{UserID: userID, NotificationCadence: cadence}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		s.logger.Error("UpdateSettings failed", "user_id", userID, "error", err)
		return models.UserSettings{}, storeErr(err, "failed to save settings")
	}
	return settings, nil
}

// Friends lists the caller's friends.
func (s *UserService) Friends(ctx context.Context, userID string) ([]models.Friend, error) {
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		s.logger.Error("ListFriends failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to list friends")
	}
	return friends, nil
}

// AddFriend befriends the user registered under email, in both directions.
func (s *UserService) AddFriend(ctx context.Context, userID, email string) (models.Friend, error) {
	email = auth.NormalizeEmail(email)
	s.logger.Info("AddFriend request received", "user_id", userID, "email", email)

	other, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Friend{}, apperr.NotFound("user with this email not found")
	}
	if err != nil {
		return models.Friend{}, storeErr(err, "failed to look up user")
	}
	if other.ID == userID {
		return models.Friend{}, apperr.Validation("cannot add yourself as a friend")
	}

	if err := s.store.AddFriendship(ctx, userID, other.ID); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			s.logger.Error("AddFriend failed", "user_id", userID, "error", err)
		}
		return models.Friend{}, storeErr(err, "failed to add friend")
	}

	s.logger.Info("Friend added", "user_id", userID, "friend_id", other.ID)
	return models.Friend{ID: other.ID, Email: other.Email, DisplayName: other.DisplayName}, nil
}

// RemoveFriend removes the friendship in both directions.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	s.logger.Info("RemoveFriend request received", "user_id", userID, "friend_id", friendID)

	if err := s.store.RemoveFriendship(ctx, userID, friendID); err != nil {
		return storeErr(err, "failed to remove friend")
	}

	s.logger.Info("Friend removed", "user_id", userID, "friend_id", friendID)
	return nil
}
