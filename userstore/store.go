package userstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no user matches.
var ErrNotFound = errors.New("user record not found")

// ErrEmailTaken is returned by writes that would violate email uniqueness.
var ErrEmailTaken = errors.New("email already in use")

// User is a stored principal. PasswordHash is write-only from the caller's
// point of view and is never serialized: the engine strips it before anything
// leaves the core.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string `json:"-"`
	Age          int
	Active       bool
	CreatedAt    time.Time
}

// Store is the single user-record contract. Implementations enforce email
// uniqueness on Save and Update and must be safe for concurrent use.
type Store interface {
	// FindByID returns the user with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user with the given email (case-sensitive,
	// as stored), or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns every stored user.
	FindAll(ctx context.Context) ([]User, error)

	// Save persists a new user. The caller supplies ID and CreatedAt.
	// Returns ErrEmailTaken when the email is already present.
	Save(ctx context.Context, u *User) (*User, error)

	// Update replaces the stored user with the same ID. Returns ErrNotFound
	// for unknown ids and ErrEmailTaken when the new email is owned by a
	// different user.
	Update(ctx context.Context, u *User) (*User, error)

	// Delete removes the user with the given id, reporting whether a record
	// was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
