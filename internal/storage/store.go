// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/models"
)

// ReflectionStore persists reflections together with their scopes and reactions.
type ReflectionStore interface {
	// CreateReflection persists a new reflection. The ID must already be set.
	CreateReflection(ctx context.Context, r *models.Reflection) error

	// GetReflection retrieves a reflection by ID.
	// Returns an apperr NotFound error if it does not exist.
	GetReflection(ctx context.Context, id string) (*models.Reflection, error)

	// UpdateReflection saves the content of an existing reflection (high, low,
	// buffalo, image, timestamp). Scopes, reactions and the flag are written
	// only when selected in fields. The author display name is never changed.
	// Returns an apperr NotFound error if it does not exist.
	UpdateReflection(ctx context.Context, r *models.Reflection, fields ReflectionFields) error

	// ToggleReaction atomically adds or removes userID from the reactors of
	// kind and reports whether the user is now reacting.
	// Returns an apperr NotFound error if the reflection does not exist.
	ToggleReaction(ctx context.Context, id, kind, userID string) (bool, error)

	// ToggleFlag atomically flips the follow-up flag and returns the new value.
	// Returns an apperr NotFound error if the reflection does not exist.
	ToggleFlag(ctx context.Context, id string) (bool, error)

	// DeleteReflection removes a reflection. Deleting a missing ID is not an error.
	DeleteReflection(ctx context.Context, id string) error

	// ListReflectionsByAuthor returns the author's reflections, newest first.
	ListReflectionsByAuthor(ctx context.Context, authorID string) ([]*models.Reflection, error)

	// ListReflectionsSharedWith returns reflections not authored by excludeAuthorID
	// whose scopes contain any of scopeIDs, newest first.
	ListReflectionsSharedWith(ctx context.Context, scopeIDs []string, excludeAuthorID string) ([]*models.Reflection, error)

	// CountReflectionsSince counts the author's reflections with a timestamp at or after since.
	CountReflectionsSince(ctx context.Context, authorID string, since time.Time) (int, error)
}

// ReflectionFields selects the engagement parts UpdateReflection rewrites.
type ReflectionFields struct {
	Scopes    bool
	Reactions bool
	Flag      bool
}

// UserStore persists accounts, settings and friendships.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// GetSettings returns the user's settings, creating the defaults on first access.
	GetSettings(ctx context.Context, userID string) (models.UserSettings, error)
	SaveSettings(ctx context.Context, settings models.UserSettings) error

	// AddFriendship records the relationship in both directions.
	// Returns an apperr Conflict error if it already exists.
	AddFriendship(ctx context.Context, userID, friendID string) error
	// RemoveFriendship removes both directions. Returns NotFound if absent.
	RemoveFriendship(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
}

// HerdStore persists herds and their ordered member lists.
type HerdStore interface {
	// CreateHerd persists the herd and its initial members.
	CreateHerd(ctx context.Context, herd *models.Herd) error
	GetHerd(ctx context.Context, id string) (*models.Herd, error)
	// UpdateHerd saves name, description and updated_at.
	UpdateHerd(ctx context.Context, herd *models.Herd) error
	// DeleteHerd removes the herd and its memberships. Reflections scoped to
	// it keep the stale ID.
	DeleteHerd(ctx context.Context, id string) error
	// ListHerdsForMember returns every herd userID belongs to.
	ListHerdsForMember(ctx context.Context, userID string) ([]*models.Herd, error)
	AddHerdMember(ctx context.Context, herdID string, member models.HerdMember) error
	RemoveHerdMember(ctx context.Context, herdID, userID string) error
}

// Store defines the full server-side storage interface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ReflectionStore
	UserStore
	HerdStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
