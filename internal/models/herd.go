package models

import "time"

// Role is a herd member's role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Herd is a named sharing group.
// Exactly one member holds RoleOwner: the creator.
type Herd struct {
	// ID is the unique identifier for the herd (UUID format).
	ID string `json:"id"`

	// Name is the display name of the herd (e.g., "Family", "Book Club").
	Name string `json:"name"`

	Description string `json:"description,omitempty"`

	// OwnerID is the user ID of the creator.
	OwnerID string `json:"owner_id"`

	// Members is ordered by join time; the owner comes first.
	Members []HerdMember `json:"members"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HerdMember is one user's membership in a herd.
type HerdMember struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"full_name,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
	Role        Role      `json:"role"`
}

// Member returns the membership for userID, if any.
func (h *Herd) Member(userID string) (HerdMember, bool) {
	for _, m := range h.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return HerdMember{}, false
}

// IsMember reports whether userID belongs to the herd.
func (h *Herd) IsMember(userID string) bool {
	_, ok := h.Member(userID)
	return ok
}

// MemberIDs returns the user IDs of all members in order.
func (h *Herd) MemberIDs() []string {
	ids := make([]string, len(h.Members))
	for i, m := range h.Members {
		ids[i] = m.UserID
	}
	return ids
}
