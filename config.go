package authcore

import (
	"errors"
	"fmt"
	"time"

	"github.com/rafaelpmaio/authcore/password"
)

// PasswordAlgorithm selects the hashing scheme used for stored
// credentials.
type PasswordAlgorithm string

const (
	AlgorithmBcrypt   PasswordAlgorithm = "bcrypt"
	AlgorithmArgon2id PasswordAlgorithm = "argon2id"
)

// JWTConfig controls token issuance and verification. Access and
// refresh tokens are signed with separate secrets so one kind can never
// be replayed as the other.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Issuer, when set, is stamped into every token and enforced on
	// parse.
	Issuer string

	// Leeway tolerates small clock skew when validating expiry.
	Leeway time.Duration
}

// PasswordConfig controls credential hashing and the registration-time
// strength check.
type PasswordConfig struct {
	Algorithm PasswordAlgorithm

	// MinLength is the shortest password Register accepts.
	MinLength int

	// BcryptCost applies when Algorithm is bcrypt. Zero means the
	// package default.
	BcryptCost int

	// Argon2 applies when Algorithm is argon2id.
	Argon2 password.Argon2Config
}

// AuditConfig controls the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull makes Emit non-blocking: events beyond the buffer are
	// counted and discarded instead of applying backpressure.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config is the full Engine configuration. Zero fields are filled from
// defaults during Build; Validate rejects combinations that cannot work.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// DefaultConfig returns the baseline configuration: 15 minute access
// tokens, 7 day refresh tokens, bcrypt hashing, audit and metrics off.
// Secrets are intentionally empty and must be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Algorithm:  AlgorithmBcrypt,
			MinLength:  6,
			BcryptCost: password.DefaultBcryptCost,
			Argon2:     password.DefaultArgon2Config(),
		},
		Audit: AuditConfig{
			BufferSize: 256,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return errors.New("config: JWT.AccessSecret is required")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("config: JWT.RefreshSecret is required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("config: JWT.AccessTTL must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("config: JWT.RefreshTTL must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("config: refresh TTL shorter than access TTL")
	}
	if c.JWT.Leeway < 0 {
		return errors.New("config: JWT.Leeway must not be negative")
	}

	switch c.Password.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("config: unknown password algorithm %q", c.Password.Algorithm)
	}
	if c.Password.MinLength < 1 {
		return errors.New("config: Password.MinLength must be at least 1")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("config: Audit.BufferSize must be positive when audit is enabled")
	}

	return nil
}
