package entity

import (
	"time"
)

// SystemActor stamps rows created without a session (registration, seeding).
const SystemActor = "SYSTEM"

// User is the aggregate root for the identity domain.
// PasswordHash holds a bcrypt digest, never plaintext.
type User struct {
	UserID       string
	PasswordHash string
	Email        string
	Birthdate    string
	Gender       string
	Admin        bool
	State        State
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the hash-free snapshot bound to a session.
func (u *User) Identity() Identity {
	return Identity{UserID: u.UserID, Email: u.Email, Admin: u.Admin}
}

// Identity is who the current session acts as.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
}

// Session binds an opaque token to exactly one Identity until logout,
// expiry, or account deletion.
type Session struct {
	ID        string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
