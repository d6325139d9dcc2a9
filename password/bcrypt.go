package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost mirrors the cost factor used by the rest of the system.
const DefaultBcryptCost = 10

// Bcrypt is a [Hasher] backed by golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher with the given cost factor. A cost of 0
// selects [DefaultBcryptCost].
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash derives a bcrypt hash from the plaintext.
func (b *Bcrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether secret matches encoded. Comparison is delegated to
// bcrypt and is constant-time with respect to the derived key.
func (b *Bcrypt) Verify(secret, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// NeedsRehash reports whether encoded was produced with a lower cost than
// currently configured.
func (b *Bcrypt) NeedsRehash(encoded string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return false, err
	}
	return cost < b.cost, nil
}
