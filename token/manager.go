package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates access tokens from refresh tokens inside the signed
// claims, so a token of one kind can never be presented as the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrKindMismatch is returned when a structurally valid token carries the
// wrong kind tag for the requested parse.
var ErrKindMismatch = errors.New("token kind mismatch")

// ErrExpired is returned for tokens past their expiry window.
var ErrExpired = errors.New("token expired")

// ErrMalformed covers every other parse failure: bad signature, bad shape,
// unexpected algorithm, missing claims.
var ErrMalformed = errors.New("token malformed")

// Config holds the signing material and validity windows for both token
// kinds. Access and refresh tokens are signed with independent secrets so
// compromise of one does not compromise the other.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the payload embedded in every issued token. It is never
// persisted; verification reconstructs it from the signed string.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Kind   Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256-signed access and refresh tokens.
// A Manager is immutable after construction and safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager. Both TTLs must be
// positive and both secrets non-empty; leeway is capped at two minutes.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// IssueAccess signs a new access token for the given principal.
func (m *Manager) IssueAccess(userID, email string) (string, error) {
	return m.issue(userID, email, KindAccess, m.config.AccessTTL, m.config.AccessSecret)
}

// IssueRefresh signs a new refresh token for the given principal.
func (m *Manager) IssueRefresh(userID, email string) (string, error) {
	return m.issue(userID, email, KindRefresh, m.config.RefreshTTL, m.config.RefreshSecret)
}

func (m *Manager) issue(userID, email string, kind Kind, ttl time.Duration, secret []byte) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	// The jti keeps every issued token unique. iat and exp alone have
	// one-second granularity, so two tokens minted for the same principal
	// within the same second would otherwise be byte-identical.
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess verifies signature, expiry, and kind tag of an access token.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, KindAccess, m.config.AccessSecret)
}

// ParseRefresh verifies signature, expiry, and kind tag of a refresh token.
// Callers still need a store lookup before trusting a refresh token: the
// signature alone says nothing about revocation.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, KindRefresh, m.config.RefreshSecret)
}

func (m *Manager) parse(tokenStr string, kind Kind, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Kind != kind {
		return nil, ErrKindMismatch
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}
