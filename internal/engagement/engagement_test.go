package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/highlowbuffalo/internal/models"
)

func newReflection() *models.Reflection {
	return &models.Reflection{
		ID:         "r1",
		High:       "Won a prize",
		Low:        "Lost my keys",
		Buffalo:    "Saw a parade",
		SharedWith: []string{models.ScopeSelf},
	}
}

func TestToggleReactionIsItsOwnInverse(t *testing.T) {
	r := newReflection()
	ToggleReaction(r, "u2", DefaultKind)
	before := r.Clone()

	assert.True(t, ToggleReaction(r, "u1", DefaultKind))
	assert.False(t, ToggleReaction(r, "u1", DefaultKind))

	assert.Equal(t, before.CuriosityReactions, r.CuriosityReactions)
}

func TestReactionCountDistinctReactors(t *testing.T) {
	r := newReflection()
	reactors := []string{"a", "b", "c", "d"}
	for _, id := range reactors {
		ToggleReaction(r, id, DefaultKind)
	}
	require.Equal(t, len(reactors), ReactionCount(r, DefaultKind))

	ToggleReaction(r, "c", DefaultKind)
	assert.Equal(t, len(reactors)-1, ReactionCount(r, DefaultKind))
	assert.Equal(t, len(reactors)-1, ReactionCount(r, ""))
}

func TestReactionCountAcrossKinds(t *testing.T) {
	r := newReflection()
	ToggleReaction(r, "a", DefaultKind)
	ToggleReaction(r, "a", "hug")
	ToggleReaction(r, "b", "hug")

	assert.Equal(t, 3, ReactionCount(r, ""))
	assert.Equal(t, 2, ReactionCount(r, "hug"))
	assert.Equal(t, []Summary{{Kind: DefaultKind, Count: 1}, {Kind: "hug", Count: 2}}, Summarize(r))
}

func TestScenarioReactThenUnreact(t *testing.T) {
	r := newReflection()
	require.Zero(t, ReactionCount(r, ""))
	require.False(t, r.IsFlaggedForFollowUp)

	ToggleReaction(r, "u1", "curiosity")
	assert.Equal(t, 1, ReactionCount(r, ""))
	assert.True(t, HasReacted(r, "u1"))

	ToggleReaction(r, "u1", "curiosity")
	assert.Equal(t, 0, ReactionCount(r, ""))
	assert.False(t, HasReacted(r, "u1"))
	assert.Empty(t, r.CuriosityReactions)
}

func TestLegacyKindAlias(t *testing.T) {
	r := newReflection()
	ToggleReaction(r, "u1", "curious")

	assert.Equal(t, 1, ReactionCount(r, DefaultKind))
	assert.False(t, ToggleReaction(r, "u1", ""))
}

func TestToggleFollowUpFlagLeavesReactions(t *testing.T) {
	r := newReflection()
	ToggleReaction(r, "u1", DefaultKind)

	assert.True(t, ToggleFollowUpFlag(r))
	assert.False(t, ToggleFollowUpFlag(r))
	assert.Equal(t, 1, ReactionCount(r, ""))
}

func TestNeedsFollowUp(t *testing.T) {
	t.Run("plain reflection", func(t *testing.T) {
		assert.False(t, NeedsFollowUp(newReflection()))
	})
	t.Run("flagged", func(t *testing.T) {
		r := newReflection()
		r.IsFlaggedForFollowUp = true
		assert.True(t, NeedsFollowUp(r))
	})
	t.Run("reacted", func(t *testing.T) {
		r := newReflection()
		ToggleReaction(r, "u1", DefaultKind)
		assert.True(t, NeedsFollowUp(r))
	})
}

func TestToggleDoesNotAliasClones(t *testing.T) {
	r := newReflection()
	ToggleReaction(r, "a", DefaultKind)
	ToggleReaction(r, "b", DefaultKind)
	snapshot := r.Clone()

	ToggleReaction(r, "a", DefaultKind)
	assert.Equal(t, []string{"a", "b"}, snapshot.CuriosityReactions[DefaultKind])
}

func TestSanitize(t *testing.T) {
	got := Sanitize(map[string][]string{
		"curious":   {"a", "a", "b"},
		"curiosity": {"b", "c"},
		"empty":     {},
	})
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got[DefaultKind])
}
