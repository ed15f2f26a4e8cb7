package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/storage/kv"
)

func newSQLiteBackend(t *testing.T) *Backend {
	t.Helper()
	store, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	b := New(store, "me")
	t.Cleanup(func() { b.Close() })
	return b
}

func newRedisBackend(t *testing.T) *Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := kv.NewRedisStore("redis://"+mr.Addr(), "hlb:me:")
	require.NoError(t, err)
	b := New(store, "me")
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend(t *testing.T) {
	substrates := map[string]func(*testing.T) *Backend{
		"sqlite": newSQLiteBackend,
		"redis":  newRedisBackend,
	}

	for name, open := range substrates {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			ctx := context.Background()

			t.Run("empty store lists nothing", func(t *testing.T) {
				rs, err := b.ListReflections(ctx)
				require.NoError(t, err)
				assert.Empty(t, rs)

				feed, err := b.Feed(ctx)
				require.NoError(t, err)
				assert.Empty(t, feed)
			})

			t.Run("create validates before persisting", func(t *testing.T) {
				_, err := b.CreateReflection(ctx, reflection.Draft{High: "h", Low: "", Buffalo: "b"})
				assert.True(t, errors.Is(err, apperr.ErrValidation))

				rs, _ := b.ListReflections(ctx)
				assert.Empty(t, rs)
			})

			first, err := b.CreateReflection(ctx, reflection.Draft{High: " h ", Low: "l", Buffalo: "b"})
			require.NoError(t, err)
			assert.Equal(t, "h", first.High)
			assert.Equal(t, "me", first.AuthorID)
			assert.Equal(t, []string{models.ScopeSelf}, first.SharedWith)

			time.Sleep(2 * time.Millisecond)
			second, err := b.CreateReflection(ctx, reflection.Draft{High: "h2", Low: "l2", Buffalo: "b2", SharedWith: []string{"friend-1"}})
			require.NoError(t, err)

			t.Run("list is newest first and survives reload", func(t *testing.T) {
				reopened := New(b.store, "me")
				rs, err := reopened.ListReflections(ctx)
				require.NoError(t, err)
				require.Len(t, rs, 2)
				assert.Equal(t, second.ID, rs[0].ID)
				assert.True(t, rs[1].Timestamp.Equal(first.Timestamp))
			})

			t.Run("reaction and flag toggles persist", func(t *testing.T) {
				r, err := b.ToggleReaction(ctx, first.ID, "curious")
				require.NoError(t, err)
				assert.Equal(t, []string{"me"}, r.CuriosityReactions["curiosity"])

				r, err = b.ToggleReaction(ctx, first.ID, "curiosity")
				require.NoError(t, err)
				assert.Empty(t, r.CuriosityReactions)

				r, err = b.ToggleFlag(ctx, first.ID)
				require.NoError(t, err)
				assert.True(t, r.IsFlaggedForFollowUp)

				_, err = b.ToggleFlag(ctx, "missing")
				assert.True(t, errors.Is(err, apperr.ErrNotFound))
			})

			t.Run("update merges fields", func(t *testing.T) {
				buffalo := "odd"
				r, err := b.UpdateReflection(ctx, second.ID, reflection.Patch{Buffalo: &buffalo})
				require.NoError(t, err)
				assert.Equal(t, "odd", r.Buffalo)
				assert.Equal(t, "h2", r.High)

				_, err = b.UpdateReflection(ctx, "missing", reflection.Patch{Buffalo: &buffalo})
				assert.True(t, errors.Is(err, apperr.ErrNotFound))
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				require.NoError(t, b.DeleteReflection(ctx, second.ID))
				require.NoError(t, b.DeleteReflection(ctx, second.ID))
				rs, _ := b.ListReflections(ctx)
				require.Len(t, rs, 1)
				assert.Equal(t, first.ID, rs[0].ID)
			})
		})
	}
}

func TestSettingsAndReferenceData(t *testing.T) {
	b := newSQLiteBackend(t)
	ctx := context.Background()

	settings, err := b.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CadenceDaily, settings.NotificationCadence)

	raw, err := b.store.Get(ctx, KeySettings)
	require.NoError(t, err, "defaults are written on first access")
	assert.Contains(t, string(raw), "daily")

	_, err = b.SaveSettings(ctx, models.UserSettings{NotificationCadence: "hourly"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	saved, err := b.SaveSettings(ctx, models.UserSettings{NotificationCadence: models.CadencePaused})
	require.NoError(t, err)
	assert.Equal(t, "me", saved.UserID)

	friend, err := b.AddFriend(ctx, "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", friend.Email)

	_, err = b.AddFriend(ctx, "bob@example.com")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	friends, err := b.ListFriends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 1)

	require.NoError(t, b.RemoveFriend(ctx, friend.ID))
	assert.True(t, errors.Is(b.RemoveFriend(ctx, friend.ID), apperr.ErrNotFound))

	herds, err := b.ListHerds(ctx)
	require.NoError(t, err)
	assert.Empty(t, herds)

	require.NoError(t, b.SaveHerds(ctx, []*models.Herd{{ID: "h1", Name: "Family"}}))
	herds, err = b.ListHerds(ctx)
	require.NoError(t, err)
	require.Len(t, herds, 1)
	assert.Equal(t, "Family", herds[0].Name)
}
