package authcore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/rafaelpmaio/authcore/refreshstore"
	"github.com/rafaelpmaio/authcore/userstore"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = "test-access-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	cfg.JWT.Issuer = "authcore-test"
	// Low cost keeps the suite fast; production uses the default.
	cfg.Password.BcryptCost = 4
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineWithConfig(t, testConfig())
}

func newTestEngineWithConfig(t *testing.T, cfg Config) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithUserStore(userstore.NewMemory()).
		WithTokenStore(refreshstore.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

// newRedisEngine builds an Engine backed by a real (in-process) Redis
// so the full lifecycle is exercised against the production store.
func newRedisEngine(t *testing.T) *Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := New().
		WithConfig(testConfig()).
		WithUserStore(userstore.NewMemory()).
		WithTokenStore(refreshstore.NewRedis(client, "test:rt")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func mustRegister(t *testing.T, e *Engine, email string) *LoginResult {
	t.Helper()

	res, err := e.Register(context.Background(), RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct horse battery",
		Age:      30,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res
}
