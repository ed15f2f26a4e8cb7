// Package visibility decides which reflections a scope selector or a viewer
// can see.
//
// Scope filtering matches SharedWith literally: a reflection shared with a
// herd does not match a filter on one of that herd's members.
package visibility

import (
	"slices"

	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// All is the selector that returns everything the caller can see.
const All = "all"

// Filter returns the reflections visible under selector, preserving order.
// An empty selector behaves like All.
func Filter(rs []*models.Reflection, selector string) []*models.Reflection {
	if selector == "" || selector == All {
		return rs
	}
	out := make([]*models.Reflection, 0, len(rs))
	for _, r := range rs {
		if r.SharedWithScope(selector) {
			out = append(out, r)
		}
	}
	return out
}

// CanView reports whether viewerID may see r: the author always can, as can
// anyone whose own ID or one of whose herd IDs appears in SharedWith.
func CanView(r *models.Reflection, viewerID string, herdIDs []string) bool {
	if r.AuthorID == viewerID {
		return true
	}
	for _, scope := range r.SharedWith {
		if scope == models.ScopeSelf {
			continue
		}
		if scope == viewerID || slices.Contains(herdIDs, scope) {
			return true
		}
	}
	return false
}

// Feed returns reflections authored by others that viewerID can see.
func Feed(rs []*models.Reflection, viewerID string, herdIDs []string) []*models.Reflection {
	out := make([]*models.Reflection, 0, len(rs))
	for _, r := range rs {
		if r.AuthorID != viewerID && CanView(r, viewerID, herdIDs) {
			out = append(out, r)
		}
	}
	return out
}

// FollowUps returns the reflections that are flagged or have reactions.
func FollowUps(rs []*models.Reflection) []*models.Reflection {
	out := make([]*models.Reflection, 0, len(rs))
	for _, r := range rs {
		if engagement.NeedsFollowUp(r) {
			out = append(out, r)
		}
	}
	return out
}

// NewestFirst sorts rs by timestamp, newest first, breaking ties by ID.
func NewestFirst(rs []*models.Reflection) {
	slices.SortStableFunc(rs, func(a, b *models.Reflection) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
