package reflection

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

var (
	author = Author{ID: "u1", DisplayName: "Uma"}
	t0     = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func TestNewFromDraft(t *testing.T) {
	t.Run("trims content and defaults scope", func(t *testing.T) {
		r, err := NewFromDraft(Draft{High: "  Won a prize ", Low: "Lost my keys\n", Buffalo: "\tSaw a parade"}, author, t0)
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, "Won a prize", r.High)
		assert.Equal(t, "Lost my keys", r.Low)
		assert.Equal(t, "Saw a parade", r.Buffalo)
		assert.Equal(t, []string{models.ScopeSelf}, r.SharedWith)
		assert.Equal(t, t0, r.Timestamp)
		assert.Empty(t, r.CuriosityReactions)
		assert.False(t, r.IsFlaggedForFollowUp)
		assert.Equal(t, "u1", r.AuthorID)
		assert.Equal(t, "Uma", r.AuthorDisplayName)
	})

	t.Run("keeps explicit scope", func(t *testing.T) {
		r, err := NewFromDraft(Draft{High: "h", Low: "l", Buffalo: "b", SharedWith: []string{"herdX", " herdX", ""}}, author, t0)
		require.NoError(t, err)
		assert.Equal(t, []string{"herdX"}, r.SharedWith)
	})

	blanks := map[string]Draft{
		"empty high":      {High: "", Low: "l", Buffalo: "b"},
		"blank low":       {High: "h", Low: "   ", Buffalo: "b"},
		"whitespace only": {High: "h", Low: "l", Buffalo: "\n\t"},
		"all empty":       {},
	}
	for name, d := range blanks {
		t.Run(name, func(t *testing.T) {
			r, err := NewFromDraft(d, author, t0)
			assert.Nil(t, r)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestApplyPatch(t *testing.T) {
	base := func(t *testing.T) *models.Reflection {
		r, err := NewFromDraft(Draft{High: "h", Low: "l", Buffalo: "b"}, author, t0)
		require.NoError(t, err)
		return r
	}
	later := t0.Add(time.Hour)

	t.Run("content change refreshes timestamp", func(t *testing.T) {
		r := base(t)
		require.NoError(t, ApplyPatch(r, Patch{High: strPtr(" new high ")}, later))
		assert.Equal(t, "new high", r.High)
		assert.Equal(t, later, r.Timestamp)
	})

	t.Run("identical content keeps timestamp", func(t *testing.T) {
		r := base(t)
		require.NoError(t, ApplyPatch(r, Patch{High: strPtr("h")}, later))
		assert.Equal(t, t0, r.Timestamp)
	})

	t.Run("scope and flag do not touch timestamp", func(t *testing.T) {
		r := base(t)
		flag := true
		require.NoError(t, ApplyPatch(r, Patch{SharedWith: []string{"herdX"}, IsFlaggedForFollowUp: &flag}, later))
		assert.Equal(t, []string{"herdX"}, r.SharedWith)
		assert.True(t, r.IsFlaggedForFollowUp)
		assert.Equal(t, t0, r.Timestamp)
	})

	t.Run("reactions are sanitized", func(t *testing.T) {
		r := base(t)
		require.NoError(t, ApplyPatch(r, Patch{CuriosityReactions: map[string][]string{"curious": {"a", "a"}}}, later))
		assert.Equal(t, map[string][]string{"curiosity": {"a"}}, r.CuriosityReactions)
	})

	t.Run("blank content is rejected without side effects", func(t *testing.T) {
		r := base(t)
		err := ApplyPatch(r, Patch{High: strPtr("changed"), Low: strPtr("  ")}, later)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, "h", r.High)
	})

	t.Run("empty scope list is rejected", func(t *testing.T) {
		r := base(t)
		err := ApplyPatch(r, Patch{SharedWith: []string{" "}}, later)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, []string{models.ScopeSelf}, r.SharedWith)
	})
}

func TestValidateImage(t *testing.T) {
	encode := func(n int) string {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, n))
	}

	assert.NoError(t, ValidateImage(""))
	assert.NoError(t, ValidateImage(encode(1024)))
	assert.NoError(t, ValidateImage(encode(MaxImageBytes)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateImage(encode(MaxImageBytes+1))))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateImage(strings.Repeat("x", MaxImageBytes+1))))
}
