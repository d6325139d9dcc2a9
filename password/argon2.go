package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2AlgorithmID = "argon2id"

// Argon2Config holds the argon2id cost parameters. Memory is in KiB.
type Argon2Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns interactive-login parameters (64 MiB, t=3, p=2).
func DefaultArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 is a [Hasher] producing PHC-encoded argon2id hashes.
type Argon2 struct {
	config Argon2Config
}

// NewArgon2 validates cfg and returns an argon2id hasher.
func NewArgon2(cfg Argon2Config) (*Argon2, error) {
	if cfg.Memory < 8*1024 {
		return nil, errors.New("argon2 memory must be >= 8192 KiB")
	}
	if cfg.Time < 1 {
		return nil, errors.New("argon2 time must be >= 1")
	}
	if cfg.Parallelism < 1 {
		return nil, errors.New("argon2 parallelism must be >= 1")
	}
	if cfg.SaltLength < 16 {
		return nil, errors.New("argon2 salt length must be >= 16")
	}
	if cfg.KeyLength < 16 {
		return nil, errors.New("argon2 key length must be >= 16")
	}
	return &Argon2{config: cfg}, nil
}

// Hash derives a PHC-encoded argon2id hash with a fresh random salt.
func (a *Argon2) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty password")
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2AlgorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key under the parameters embedded in encoded and
// compares in constant time.
func (a *Argon2) Verify(secret, encoded string) (bool, error) {
	params, salt, key, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// NeedsRehash reports whether encoded carries weaker parameters than the
// hasher is configured with.
func (a *Argon2) NeedsRehash(encoded string) (bool, error) {
	params, _, key, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	if params.Memory < a.config.Memory || params.Time < a.config.Time || params.Parallelism < a.config.Parallelism {
		return true, nil
	}
	return uint32(len(key)) != a.config.KeyLength, nil
}

func decodePHC(encoded string) (Argon2Config, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2AlgorithmID {
		return Argon2Config{}, nil, nil, errors.New("invalid argon2 hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Config{}, nil, nil, errors.New("unsupported argon2 version")
	}

	var params Argon2Config
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Parallelism); err != nil {
		return Argon2Config{}, nil, nil, errors.New("invalid argon2 parameters")
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return Argon2Config{}, nil, nil, errors.New("invalid argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Argon2Config{}, nil, nil, errors.New("invalid argon2 salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2Config{}, nil, nil, errors.New("invalid argon2 key")
	}

	return params, salt, key, nil
}
