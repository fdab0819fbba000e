package domain

import "time"

// User represents an authenticated user account.
type User struct {
	Syncable
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// NewUser creates a user with initialized timestamps.
func NewUser(id, email, passwordHash string) *User {
	u := &User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	u.ID = id
	u.InitTimestamps()
	return u
}

// Sanitized returns a copy safe to send to clients (no password hash).
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}
