package refreshstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by FindByToken when no matching, non-revoked,
// non-expired record exists. Absent, revoked, and expired are deliberately
// indistinguishable to callers.
var ErrNotFound = errors.New("refresh token record not found")

// Record is one issued refresh token. ID and CreatedAt are assigned by
// Create. Revoked only ever transitions false→true.
type Record struct {
	ID         string
	UserID     string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	Revoked    bool
	DeviceInfo string
	IPAddress  string
}

// Expired reports whether the record is past its expiry at the given instant.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// Store is the refresh-token collection contract. All operations are safe for
// concurrent use; set-membership operations return counts or booleans instead
// of erroring on "not found".
type Store interface {
	// Create persists a new record, assigning ID and CreatedAt.
	Create(ctx context.Context, rec Record) (*Record, error)

	// FindByToken returns the active record for the token string, or
	// ErrNotFound when the record is absent, revoked, or expired.
	FindByToken(ctx context.Context, tokenStr string) (*Record, error)

	// FindByUserID returns all active (non-revoked, non-expired) records
	// owned by userID.
	FindByUserID(ctx context.Context, userID string) ([]Record, error)

	// Revoke marks the record with the given ID as revoked. It reports
	// true only for the call that transitioned the record from active to
	// revoked; unknown and already-revoked IDs report false. Callers
	// rotating a token use the boolean to decide a race: exactly one of
	// N concurrent revokers of the same ID sees true.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeByToken marks the record holding the token string as revoked.
	// Already-revoked records report true: revocation is idempotent.
	RevokeByToken(ctx context.Context, tokenStr string) (bool, error)

	// RevokeAllForUser revokes every active record owned by userID and
	// returns the number of records transitioned.
	RevokeAllForUser(ctx context.Context, userID string) (int, error)

	// DeleteExpired removes records past their expiry and returns the count
	// removed. Safe to run concurrently with other operations; the count is
	// approximate under concurrency.
	DeleteExpired(ctx context.Context) (int, error)
}
