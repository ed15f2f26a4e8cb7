// Package identity resolves sharing-scope IDs to labels and member sets.
// It only reads; it never fails.
package identity

import "github.com/mmynk/highlowbuffalo/internal/models"

// SelfLabel is shown for the "self" scope.
const SelfLabel = "Just Me"

// LabelFor returns a displayable label for scopeID. Unknown or stale IDs,
// such as a deleted herd, fall back to the raw ID.
func LabelFor(scopeID string, friends []models.Friend, herds []models.Herd) string {
	if scopeID == models.ScopeSelf {
		return SelfLabel
	}
	for _, f := range friends {
		if f.ID == scopeID {
			return f.Label()
		}
	}
	for _, h := range herds {
		if h.ID == scopeID {
			return h.Name
		}
	}
	return scopeID
}

// Labels resolves every scope of a reflection.
func Labels(scopeIDs []string, friends []models.Friend, herds []models.Herd) []string {
	out := make([]string, len(scopeIDs))
	for i, id := range scopeIDs {
		out[i] = LabelFor(id, friends, herds)
	}
	return out
}

// Members returns the user IDs that scopeID resolves to from the author's
// point of view: the author for "self", the friend for a friend ID, and
// every member for a herd ID. Unknown IDs resolve to nobody.
func Members(scopeID, authorID string, friends []models.Friend, herds []models.Herd) []string {
	if scopeID == models.ScopeSelf {
		return []string{authorID}
	}
	for _, f := range friends {
		if f.ID == scopeID {
			return []string{f.ID}
		}
	}
	for _, h := range herds {
		if h.ID == scopeID {
			return h.MemberIDs()
		}
	}
	return nil
}
