package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered author on the board.
type User struct {
	ID           uuid.UUID
	DisplayName  string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds an unpersisted user. ID and timestamps are assigned on insert.
func NewUser(displayName, username, passwordHash string) *User {
	return &User{
		DisplayName:  displayName,
		Username:     username,
		PasswordHash: passwordHash,
	}
}

// Persisted reports whether the user has been assigned an identifier by the store.
func (u *User) Persisted() bool {
	return u != nil && u.ID != uuid.Nil
}
