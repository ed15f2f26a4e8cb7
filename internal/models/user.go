package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique).
	// Used for login and for friend/herd invitations.
	Email string `json:"email"`

	// DisplayName is the name shown next to shared reflections.
	DisplayName string `json:"full_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           NewID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Friend is a trust relationship as seen from one side.
// Its existence allows the owner to target ID in a reflection's SharedWith.
type Friend struct {
	// ID is the friend's user ID.
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"full_name"`
}

// Label returns the friend's display name, falling back to the email.
func (f Friend) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Email
}

// Cadence is how often a user wants to be reminded to reflect.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
	CadencePaused Cadence = "paused"
)

// Valid reports whether c is one of the known cadences.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadencePaused:
		return true
	}
	return false
}

// UserSettings holds per-user preferences. One record per user, created with
// DefaultSettings on first access.
type UserSettings struct {
	UserID              string  `json:"-"`
	NotificationCadence Cadence `json:"notificationCadence"`
}

// DefaultSettings returns the settings a user starts with.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{UserID: userID, NotificationCadence: CadenceDaily}
}
