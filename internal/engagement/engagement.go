// Package engagement derives and mutates the reactions and follow-up flag
// embedded in a reflection.
//
// Reactions are stored as kind -> set of reactor IDs. Counts are always
// derived from the sets, which makes every mutation an idempotent toggle
// instead of a counter increment.
package engagement

import (
	"slices"
	"strings"

	"github.com/mmynk/highlowbuffalo/internal/models"
)

// DefaultKind is the only reaction kind clients currently raise.
const DefaultKind = "curiosity"

// NormalizeKind maps legacy and empty kinds onto DefaultKind.
func NormalizeKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "curious", DefaultKind:
		return DefaultKind
	default:
		return strings.ToLower(strings.TrimSpace(kind))
	}
}

// ToggleReaction removes reactorID from kind if present, otherwise adds it.
// It reports whether the reactor is reacted after the call.
func ToggleReaction(r *models.Reflection, reactorID, kind string) bool {
	kind = NormalizeKind(kind)
	if r.CuriosityReactions == nil {
		r.CuriosityReactions = make(map[string][]string)
	}

	reactors := r.CuriosityReactions[kind]
	if i := slices.Index(reactors, reactorID); i >= 0 {
		reactors = slices.Delete(slices.Clone(reactors), i, i+1)
		if len(reactors) == 0 {
			delete(r.CuriosityReactions, kind)
		} else {
			r.CuriosityReactions[kind] = reactors
		}
		return false
	}

	r.CuriosityReactions[kind] = append(slices.Clone(reactors), reactorID)
	return true
}

// ReactionCount returns the number of distinct reactors for kind, or the sum
// over all kinds when kind is empty.
func ReactionCount(r *models.Reflection, kind string) int {
	if kind != "" {
		return len(distinct(r.CuriosityReactions[NormalizeKind(kind)]))
	}
	total := 0
	for _, reactors := range r.CuriosityReactions {
		total += len(distinct(reactors))
	}
	return total
}

// HasReacted reports whether reactorID appears under any kind.
func HasReacted(r *models.Reflection, reactorID string) bool {
	for _, reactors := range r.CuriosityReactions {
		if slices.Contains(reactors, reactorID) {
			return true
		}
	}
	return false
}

// ToggleFollowUpFlag flips the follow-up flag and returns the new value.
// Reactions are left untouched.
func ToggleFollowUpFlag(r *models.Reflection) bool {
	r.IsFlaggedForFollowUp = !r.IsFlaggedForFollowUp
	return r.IsFlaggedForFollowUp
}

// NeedsFollowUp is the predicate behind the follow-up view.
func NeedsFollowUp(r *models.Reflection) bool {
	return r.IsFlaggedForFollowUp || ReactionCount(r, "") > 0
}

// Summary is the derived view of one reaction kind.
type Summary struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Summarize returns one Summary per kind, sorted by kind.
func Summarize(r *models.Reflection) []Summary {
	kinds := make([]string, 0, len(r.CuriosityReactions))
	for kind := range r.CuriosityReactions {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	out := make([]Summary, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, Summary{Kind: kind, Count: len(distinct(r.CuriosityReactions[kind]))})
	}
	return out
}

// Sanitize collapses duplicate reactor IDs and drops empty kinds, so a
// client-submitted reaction map can never violate the one-reactor-per-kind rule.
func Sanitize(reactions map[string][]string) map[string][]string {
	out := make(map[string][]string, len(reactions))
	for kind, reactors := range reactions {
		ids := distinct(reactors)
		if len(ids) > 0 {
			out[NormalizeKind(kind)] = append(out[NormalizeKind(kind)], ids...)
		}
	}
	for kind, ids := range out {
		out[kind] = distinct(ids)
	}
	return out
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
