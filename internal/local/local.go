// Package local implements the single-device backend on top of a kv.Store.
// Every document lives under a fixed key as JSON; the whole document is
// rewritten on each change.
package local

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/storage/kv"
	"github.com/mmynk/highlowbuffalo/internal/syncer"
	"github.com/mmynk/highlowbuffalo/internal/visibility"
)

// Fixed keys in the substrate.
const (
	KeyReflections = "hlb_reflections"
	KeySettings    = "hlb_user_settings"
	KeyFriends     = "hlb_friends"
	KeyHerds       = "hlb_herds"
)

var _ syncer.Backend = (*Backend)(nil)

// Backend stores one user's reflections and reference data on the device.
// There are no other authors locally, so the feed is always empty.
type Backend struct {
	store  kv.Store
	userID string
	now    func() time.Time

	// mu serialises read-modify-write cycles on a document.
	mu sync.Mutex
}

// New returns a backend for userID over store.
func New(store kv.Store, userID string) *Backend {
	return &Backend{
		store:  store,
		userID: userID,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Close releases the underlying store.
func (b *Backend) Close() error {
	return b.store.Close()
}

func (b *Backend) load(ctx context.Context) ([]*models.Reflection, error) {
	var rs []*models.Reflection
	if _, err := kv.GetJSON(ctx, b.store, KeyReflections, &rs); err != nil {
		return nil, apperr.Internal(err, "failed to read local reflections")
	}
	return rs, nil
}

func (b *Backend) save(ctx context.Context, rs []*models.Reflection) error {
	if rs == nil {
		rs = []*models.Reflection{}
	}
	if err := kv.SetJSON(ctx, b.store, KeyReflections, rs); err != nil {
		return apperr.Internal(err, "failed to write local reflections")
	}
	return nil
}

// ListReflections returns every stored reflection, newest first.
func (b *Backend) ListReflections(ctx context.Context) ([]*models.Reflection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rs, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	visibility.NewestFirst(rs)
	return rs, nil
}

// Feed is always empty on a single device.
func (b *Backend) Feed(ctx context.Context) ([]*models.Reflection, error) {
	return []*models.Reflection{}, nil
}

func (b *Backend) CreateReflection(ctx context.Context, draft reflection.Draft) (*models.Reflection, error) {
	r, err := reflection.NewFromDraft(draft, reflection.Author{ID: b.userID}, b.now())
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rs, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.save(ctx, append(rs, r)); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (b *Backend) UpdateReflection(ctx context.Context, id string, patch reflection.Patch) (*models.Reflection, error) {
	return b.mutate(ctx, id, func(r *models.Reflection) error {
		return reflection.ApplyPatch(r, patch, b.now())
	})
}

// DeleteReflection removes id. Deleting an unknown id is not an error.
func (b *Backend) DeleteReflection(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rs, err := b.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(rs, func(r *models.Reflection) bool { return r.ID == id })
	return b.save(ctx, kept)
}

func (b *Backend) ToggleReaction(ctx context.Context, id, kind string) (*models.Reflection, error) {
	return b.mutate(ctx, id, func(r *models.Reflection) error {
		engagement.ToggleReaction(r, b.userID, kind)
		return nil
	})
}

func (b *Backend) ToggleFlag(ctx context.Context, id string) (*models.Reflection, error) {
	return b.mutate(ctx, id, func(r *models.Reflection) error {
		engagement.ToggleFollowUpFlag(r)
		return nil
	})
}

// mutate applies fn to the record with id and persists the document.
func (b *Backend) mutate(ctx context.Context, id string, fn func(*models.Reflection) error) (*models.Reflection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rs, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(rs, func(r *models.Reflection) bool { return r.ID == id })
	if i < 0 {
		return nil, apperr.NotFound("reflection not found: %s", id)
	}
	if err := fn(rs[i]); err != nil {
		return nil, err
	}
	if err := b.save(ctx, rs); err != nil {
		return nil, err
	}
	return rs[i].Clone(), nil
}

// GetSettings returns the stored settings, writing the defaults on first access.
func (b *Backend) GetSettings(ctx context.Context) (models.UserSettings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	settings := models.DefaultSettings(b.userID)
	found, err := kv.GetJSON(ctx, b.store, KeySettings, &settings)
	if err != nil {
		return models.UserSettings{}, apperr.Internal(err, "failed to read local settings")
	}
	settings.UserID = b.userID
	if !found {
		if err := kv.SetJSON(ctx, b.store, KeySettings, settings); err != nil {
			return models.UserSettings{}, apperr.Internal(err, "failed to write local settings")
		}
	}
	return settings, nil
}

func (b *Backend) SaveSettings(ctx context.Context, settings models.UserSettings) (models.UserSettings, error) {
	if !settings.NotificationCadence.Valid() {
		return models.UserSettings{}, apperr.Validation("unknown notification cadence %q", settings.NotificationCadence)
	}
	settings.UserID = b.userID

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := kv.SetJSON(ctx, b.store, KeySettings, settings); err != nil {
		return models.UserSettings{}, apperr.Internal(err, "failed to write local settings")
	}
	return settings, nil
}

// ListFriends returns the offline friend list.
func (b *Backend) ListFriends(ctx context.Context) ([]models.Friend, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.friends(ctx)
}

func (b *Backend) friends(ctx context.Context) ([]models.Friend, error) {
	friends := []models.Friend{}
	if _, err := kv.GetJSON(ctx, b.store, KeyFriends, &friends); err != nil {
		return nil, apperr.Internal(err, "failed to read local friends")
	}
	return friends, nil
}

// AddFriend records a friend offline under a fresh ID so reflections can be
// scoped to them before the device ever syncs.
func (b *Backend) AddFriend(ctx context.Context, email string) (models.Friend, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.Friend{}, apperr.Validation("email is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	friends, err := b.friends(ctx)
	if err != nil {
		return models.Friend{}, err
	}
	if slices.ContainsFunc(friends, func(f models.Friend) bool { return f.Email == email }) {
		return models.Friend{}, apperr.Conflict("already friends with %s", email)
	}
	friend := models.Friend{ID: models.NewID(), Email: email}
	if err := kv.SetJSON(ctx, b.store, KeyFriends, append(friends, friend)); err != nil {
		return models.Friend{}, apperr.Internal(err, "failed to write local friends")
	}
	return friend, nil
}

func (b *Backend) RemoveFriend(ctx context.Context, friendID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	friends, err := b.friends(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(friends, func(f models.Friend) bool { return f.ID == friendID })
	if len(kept) == len(friends) {
		return apperr.NotFound("friend not found: %s", friendID)
	}
	if err := kv.SetJSON(ctx, b.store, KeyFriends, kept); err != nil {
		return apperr.Internal(err, "failed to write local friends")
	}
	return nil
}

// ListHerds returns the offline herd list.
func (b *Backend) ListHerds(ctx context.Context) ([]*models.Herd, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	herds := []*models.Herd{}
	if _, err := kv.GetJSON(ctx, b.store, KeyHerds, &herds); err != nil {
		return nil, apperr.Internal(err, "failed to read local herds")
	}
	return herds, nil
}

// SaveHerds replaces the offline herd list, e.g. with a copy fetched from the server.
func (b *Backend) SaveHerds(ctx context.Context, herds []*models.Herd) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if herds == nil {
		herds = []*models.Herd{}
	}
	if err := kv.SetJSON(ctx, b.store, KeyHerds, herds); err != nil {
		return apperr.Internal(err, "failed to write local herds")
	}
	return nil
}
