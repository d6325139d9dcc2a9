package token

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func testConfig() Config {
	return Config{
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    168 * time.Hour,
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
	}
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }},
		{"missing access secret", func(c *Config) { c.AccessSecret = nil }},
		{"missing refresh secret", func(c *Config) { c.RefreshSecret = nil }},
		{"shared secret", func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }},
		{"excessive leeway", func(c *Config) { c.Leeway = 3 * time.Minute }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, err := m.IssueAccess("u1", "a@x.com")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := m.IssueRefresh("u1", "a@x.com")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	claims, err := m.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@x.com" || claims.Kind != KindAccess {
		t.Fatalf("unexpected access claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected iat and exp claims to be set")
	}

	rc, err := m.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if rc.Kind != KindRefresh {
		t.Fatalf("expected refresh kind, got %q", rc.Kind)
	}
}

// iat and exp only carry whole seconds, so back-to-back issuance for the
// same principal lands in the same second. The jti must keep the signed
// strings distinct anyway; identical refresh tokens would collide in the
// store and orphan the earlier session.
func TestIssueUniquePerCall(t *testing.T) {
	m := newTestManager(t, testConfig())

	var last string
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		refresh, err := m.IssueRefresh("u1", "a@x.com")
		if err != nil {
			t.Fatalf("issue refresh: %v", err)
		}
		if seen[refresh] {
			t.Fatal("two issuances produced the same refresh token")
		}
		seen[refresh] = true
		last = refresh
	}

	first, _ := m.IssueAccess("u1", "a@x.com")
	second, _ := m.IssueAccess("u1", "a@x.com")
	if first == second {
		t.Fatal("two issuances produced the same access token")
	}

	claims, err := m.ParseRefresh(last)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id claim")
	}
}

func TestParseRejectsCrossKindReplay(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, _ := m.IssueAccess("u1", "a@x.com")
	refresh, _ := m.IssueRefresh("u1", "a@x.com")

	// Even with matching kind tags, the secrets differ per kind, so a token
	// presented to the wrong parser must fail before the kind check.
	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for access-as-refresh, got %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for refresh-as-access, got %v", err)
	}
}

func TestParseRejectsWrongKindTagUnderSameSecret(t *testing.T) {
	cfg := testConfig()
	m := newTestManager(t, cfg)

	// Forge a token signed with the access secret but tagged as refresh.
	claims := Claims{
		UserID: "u1",
		Email:  "a@x.com",
		Kind:   KindRefresh,
		RegisteredClaims: gjwt.RegisteredClaims{
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	forged, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(cfg.AccessSecret)
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	if _, err := m.ParseAccess(forged); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Millisecond
	m := newTestManager(t, cfg)

	access, err := m.IssueAccess("u1", "a@x.com")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.ParseAccess(access); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, _ := m.IssueAccess("u1", "a@x.com")
	tampered := access[:len(access)-2] + "xx"

	if _, err := m.ParseAccess(tampered); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	cfg := testConfig()
	m := newTestManager(t, cfg)

	claims := Claims{
		UserID: "u1",
		Kind:   KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	none := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	tokenStr, err := none.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := m.ParseAccess(tokenStr); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for alg=none, got %v", err)
	}
}

func TestParseEnforcesIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "authcore"
	m := newTestManager(t, cfg)

	access, _ := m.IssueAccess("u1", "a@x.com")
	if _, err := m.ParseAccess(access); err != nil {
		t.Fatalf("expected issuer-stamped token to parse: %v", err)
	}

	other := newTestManager(t, testConfig())
	unstamped, _ := other.IssueAccess("u1", "a@x.com")
	if _, err := m.ParseAccess(unstamped); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected missing issuer to fail, got %v", err)
	}
}

func TestIssueRejectsEmptyUserID(t *testing.T) {
	m := newTestManager(t, testConfig())
	if _, err := m.IssueAccess("", "a@x.com"); err == nil {
		t.Fatal("expected empty user id rejection")
	}
	if _, err := m.IssueRefresh("", "a@x.com"); err == nil {
		t.Fatal("expected empty user id rejection")
	}
}
