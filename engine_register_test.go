package authcore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRegister(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Age:      29,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if res.User.ID == "" {
		t.Error("expected a generated user ID")
	}
	if res.User.Email != "alice@example.com" {
		t.Errorf("email = %q", res.User.Email)
	}
	if !res.User.Active {
		t.Error("new user should be active")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
	if res.Tokens.AccessToken == res.Tokens.RefreshToken {
		t.Error("access and refresh tokens must differ")
	}

	// The pair must be immediately usable.
	if _, err := engine.VerifyAccess(ctx, res.Tokens.AccessToken); err != nil {
		t.Errorf("VerifyAccess on fresh token: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	mustRegister(t, engine, "bob@example.com")

	_, err := engine.Register(ctx, RegisterRequest{
		Name:     "Other Bob",
		Email:    "bob@example.com",
		Password: "different-password",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Register(context.Background(), RegisterRequest{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrWeakCredential) {
		t.Fatalf("err = %v, want ErrWeakCredential", err)
	}
}

func TestRegisterTrimsWhitespace(t *testing.T) {
	engine := newTestEngine(t)

	res := mustRegisterReq(t, engine, RegisterRequest{
		Name:     "  Dave  ",
		Email:    "  dave@example.com ",
		Password: "long enough password",
	})
	if res.User.Email != "dave@example.com" {
		t.Errorf("email = %q, want trimmed", res.User.Email)
	}
	if res.User.Name != "Dave" {
		t.Errorf("name = %q, want trimmed", res.User.Name)
	}
}

// The serialized form of every outward-facing user shape must be free
// of credential material.
func TestRegisterResultNeverLeaksHash(t *testing.T) {
	engine := newTestEngine(t)

	res := mustRegister(t, engine, "eve@example.com")

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)

	for _, needle := range []string{"password", "hash", "$2a$", "$argon2"} {
		if strings.Contains(strings.ToLower(body), needle) {
			t.Errorf("serialized result contains %q: %s", needle, body)
		}
	}
}

func mustRegisterReq(t *testing.T, e *Engine, req RegisterRequest) *LoginResult {
	t.Helper()

	res, err := e.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res
}
