// Package user defines the member entity, the level model derived from
// engagement points, and the repository interface for member persistence.
package user

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a member lookup misses.
var ErrNotFound = errors.New("user not found")

// User represents a registered community member.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Bio          string    `json:"bio"`
	AvatarPath   *string   `json:"avatarPath,omitempty"`
	Points       int       `json:"points"`
	Level        string    `json:"level"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public view of a member, enriched with level detail
// and unlocked achievements. Derived, not persisted.
type Profile struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	AvatarPath   *string   `json:"avatarPath,omitempty"`
	Points       int       `json:"points"`
	Level        LevelInfo `json:"level"`
	Achievements []string  `json:"achievements"`
	CreatedAt    time.Time `json:"createdAt"`
}
