package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

func TestHerdService(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", "Owner")
	member := env.signup(t, "member@example.com", "Member")
	outsider := env.signup(t, "outsider@example.com", "Outsider")

	desc := "weekly dinner"
	herd, err := env.herds.Create(ctx, owner.ID, HerdInput{Name: " Dinner Club ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Dinner Club", herd.Name)
	require.Len(t, herd.Members, 1)
	assert.Equal(t, models.RoleOwner, herd.Members[0].Role)

	t.Run("create requires a name", func(t *testing.T) {
		_, err := env.herds.Create(ctx, owner.ID, HerdInput{Name: "  "})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("add member by email", func(t *testing.T) {
		_, err := env.herds.AddMember(ctx, member.ID, herd.ID, "outsider@example.com")
		assert.True(t, errors.Is(err, apperr.ErrForbidden), "only the owner adds")

		_, err = env.herds.AddMember(ctx, owner.ID, herd.ID, "nobody@example.com")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		updated, err := env.herds.AddMember(ctx, owner.ID, herd.ID, "MEMBER@example.com")
		require.NoError(t, err)
		require.Len(t, updated.Members, 2)
		assert.Equal(t, member.ID, updated.Members[1].UserID)
		assert.Equal(t, models.RoleMember, updated.Members[1].Role)

		_, err = env.herds.AddMember(ctx, owner.ID, herd.ID, "member@example.com")
		assert.True(t, errors.Is(err, apperr.ErrConflict))
	})

	t.Run("get is members only", func(t *testing.T) {
		_, err := env.herds.Get(ctx, member.ID, herd.ID)
		assert.NoError(t, err)

		_, err = env.herds.Get(ctx, outsider.ID, herd.ID)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		_, err = env.herds.Get(ctx, owner.ID, "missing")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("list returns memberships", func(t *testing.T) {
		herds, err := env.herds.List(ctx, member.ID)
		require.NoError(t, err)
		assert.Len(t, herds, 1)

		herds, err = env.herds.List(ctx, outsider.ID)
		require.NoError(t, err)
		assert.Empty(t, herds)
	})

	t.Run("update is owner only", func(t *testing.T) {
		_, err := env.herds.Update(ctx, member.ID, herd.ID, HerdInput{Name: "Mine now"})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		updated, err := env.herds.Update(ctx, owner.ID, herd.ID, HerdInput{Name: "Supper Club"})
		require.NoError(t, err)
		assert.Equal(t, "Supper Club", updated.Name)
		assert.Equal(t, "weekly dinner", updated.Description)
	})

	t.Run("member removal rules", func(t *testing.T) {
		_, err := env.herds.RemoveMember(ctx, owner.ID, herd.ID, owner.ID)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "owner cannot leave")

		_, err = env.herds.RemoveMember(ctx, outsider.ID, herd.ID, member.ID)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		_, err = env.herds.RemoveMember(ctx, owner.ID, herd.ID, outsider.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		left, err := env.herds.RemoveMember(ctx, member.ID, herd.ID, member.ID)
		require.NoError(t, err)
		assert.Len(t, left.Members, 1)
	})

	t.Run("delete is owner only", func(t *testing.T) {
		err := env.herds.Delete(ctx, member.ID, herd.ID)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		require.NoError(t, env.herds.Delete(ctx, owner.ID, herd.ID))
		_, err = env.herds.Get(ctx, owner.ID, herd.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}
