package models

import (
	"time"

	"github.com/google/uuid"
)

// ScopeSelf is the SharedWith sentinel for "visible to the author only".
const ScopeSelf = "self"

// Reflection is a dated High / Low / Buffalo entry.
type Reflection struct {
	// ID is the unique identifier for the reflection (UUID format). Immutable.
	ID string `json:"id"`

	High    string `json:"high"`
	Low     string `json:"low"`
	Buffalo string `json:"buffalo"`

	// Image is an optional data-URI payload.
	Image string `json:"image,omitempty"`

	// Timestamp is the creation instant, refreshed on every content edit.
	Timestamp time.Time `json:"timestamp"`

	// SharedWith holds scope IDs: ScopeSelf, friend user IDs or herd IDs.
	SharedWith []string `json:"sharedWith"`

	// CuriosityReactions maps a reaction kind to the distinct reactor IDs.
	CuriosityReactions map[string][]string `json:"curiosityReactions"`

	IsFlaggedForFollowUp bool `json:"isFlaggedForFollowUp"`

	// AuthorID and AuthorDisplayName are set by the store on creation.
	AuthorID          string `json:"authorId"`
	AuthorDisplayName string `json:"authorDisplayName,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing slices or maps.
func (r *Reflection) Clone() *Reflection {
	if r == nil {
		return nil
	}
	c := *r
	c.SharedWith = append([]string(nil), r.SharedWith...)
	if r.CuriosityReactions != nil {
		c.CuriosityReactions = make(map[string][]string, len(r.CuriosityReactions))
		for kind, ids := range r.CuriosityReactions {
			c.CuriosityReactions[kind] = append([]string(nil), ids...)
		}
	}
	return &c
}

// SharedWithScope reports whether scopeID appears literally in SharedWith.
func (r *Reflection) SharedWithScope(scopeID string) bool {
	for _, s := range r.SharedWith {
		if s == scopeID {
			return true
		}
	}
	return false
}

// NewID returns a fresh identifier for any model.
func NewID() string {
	return uuid.New().String()
}
