package refreshstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type storeFixture struct {
	store Store
	close func()
}

func newFixtures(t *testing.T) map[string]storeFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return map[string]storeFixture{
		"memory": {store: NewMemory(), close: func() {}},
		"redis":  {store: NewRedis(client, "test:rt"), close: func() { mr.Close() }},
	}
}

func newRecord(userID string, ttl time.Duration) Record {
	return Record{
		UserID:     userID,
		Token:      fmt.Sprintf("tok-%s-%d", userID, time.Now().UnixNano()),
		ExpiresAt:  time.Now().Add(ttl),
		DeviceInfo: "test-agent",
		IPAddress:  "127.0.0.1",
	}
}

func TestCreateAssignsIDAndCreatedAt(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			created, err := fx.store.Create(ctx, newRecord("u1", time.Hour))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if created.ID == "" {
				t.Fatal("expected assigned record id")
			}
			if created.CreatedAt.IsZero() {
				t.Fatal("expected assigned creation timestamp")
			}
		})
	}
}

func TestFindByTokenLifecycle(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			rec := newRecord("u1", time.Hour)
			created, err := fx.store.Create(ctx, rec)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			found, err := fx.store.FindByToken(ctx, rec.Token)
			if err != nil {
				t.Fatalf("FindByToken: %v", err)
			}
			if found.ID != created.ID || found.UserID != "u1" {
				t.Fatalf("unexpected record: %+v", found)
			}

			ok, err := fx.store.Revoke(ctx, created.ID)
			if err != nil || !ok {
				t.Fatalf("Revoke: ok=%v err=%v", ok, err)
			}

			// Revoked records must not be reported as found.
			if _, err := fx.store.FindByToken(ctx, rec.Token); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after revoke, got %v", err)
			}
		})
	}
}

func TestFindByTokenUnknown(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			if _, err := fx.store.FindByToken(context.Background(), "never-issued"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestFindByTokenExpired(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			rec := newRecord("u1", -time.Minute)
			if _, err := fx.store.Create(ctx, rec); err != nil {
				// The Redis backend may refuse a non-positive TTL outright;
				// either behavior keeps the token unusable.
				return
			}
			if _, err := fx.store.FindByToken(ctx, rec.Token); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for expired record, got %v", err)
			}
		})
	}
}

func TestRevokeByToken(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			rec := newRecord("u1", time.Hour)
			if _, err := fx.store.Create(ctx, rec); err != nil {
				t.Fatalf("Create: %v", err)
			}

			ok, err := fx.store.RevokeByToken(ctx, rec.Token)
			if err != nil || !ok {
				t.Fatalf("RevokeByToken: ok=%v err=%v", ok, err)
			}

			// Idempotent: a second revoke still reports true.
			ok, err = fx.store.RevokeByToken(ctx, rec.Token)
			if err != nil || !ok {
				t.Fatalf("second RevokeByToken: ok=%v err=%v", ok, err)
			}

			ok, err = fx.store.RevokeByToken(ctx, "never-issued")
			if err != nil {
				t.Fatalf("RevokeByToken unknown: %v", err)
			}
			if ok {
				t.Fatal("expected false for unknown token")
			}
		})
	}
}

func TestRevokeUnknownID(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ok, err := fx.store.Revoke(context.Background(), "no-such-id")
			if err != nil {
				t.Fatalf("Revoke: %v", err)
			}
			if ok {
				t.Fatal("expected false for unknown id")
			}
		})
	}
}

func TestRevokeReportsTransitionOnce(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			created, err := fx.store.Create(ctx, newRecord("u1", time.Hour))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			ok, err := fx.store.Revoke(ctx, created.ID)
			if err != nil || !ok {
				t.Fatalf("first Revoke: ok=%v err=%v", ok, err)
			}

			// The transition already happened; a repeat must report false.
			ok, err = fx.store.Revoke(ctx, created.ID)
			if err != nil {
				t.Fatalf("second Revoke: %v", err)
			}
			if ok {
				t.Fatal("second Revoke reported a transition")
			}
		})
	}
}

func TestConcurrentRevokeSingleWinner(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			created, err := fx.store.Create(ctx, newRecord("u1", time.Hour))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			const revokers = 8
			start := make(chan struct{})
			wins := make(chan bool, revokers)
			var wg sync.WaitGroup
			for i := 0; i < revokers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					ok, err := fx.store.Revoke(ctx, created.ID)
					if err != nil {
						t.Errorf("Revoke: %v", err)
						return
					}
					wins <- ok
				}()
			}
			close(start)
			wg.Wait()
			close(wins)

			won := 0
			for ok := range wins {
				if ok {
					won++
				}
			}
			if won != 1 {
				t.Fatalf("expected exactly 1 winning revoke, got %d", won)
			}
		})
	}
}

func TestFindByUserIDReturnsOnlyActive(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			var tokens []string
			for i := 0; i < 3; i++ {
				rec := newRecord("u1", time.Hour)
				rec.Token = fmt.Sprintf("u1-token-%d", i)
				if _, err := fx.store.Create(ctx, rec); err != nil {
					t.Fatalf("Create: %v", err)
				}
				tokens = append(tokens, rec.Token)
			}
			other := newRecord("u2", time.Hour)
			if _, err := fx.store.Create(ctx, other); err != nil {
				t.Fatalf("Create: %v", err)
			}

			if _, err := fx.store.RevokeByToken(ctx, tokens[0]); err != nil {
				t.Fatalf("RevokeByToken: %v", err)
			}

			active, err := fx.store.FindByUserID(ctx, "u1")
			if err != nil {
				t.Fatalf("FindByUserID: %v", err)
			}
			if len(active) != 2 {
				t.Fatalf("expected 2 active records, got %d", len(active))
			}
			for _, rec := range active {
				if rec.UserID != "u1" {
					t.Fatalf("record for wrong user: %+v", rec)
				}
			}
		})
	}
}

func TestRevokeAllForUser(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			for i := 0; i < 4; i++ {
				rec := newRecord("u1", time.Hour)
				rec.Token = fmt.Sprintf("u1-token-%d", i)
				if _, err := fx.store.Create(ctx, rec); err != nil {
					t.Fatalf("Create: %v", err)
				}
			}
			// One already revoked: must not be counted again.
			if _, err := fx.store.RevokeByToken(ctx, "u1-token-0"); err != nil {
				t.Fatalf("RevokeByToken: %v", err)
			}

			count, err := fx.store.RevokeAllForUser(ctx, "u1")
			if err != nil {
				t.Fatalf("RevokeAllForUser: %v", err)
			}
			if count != 3 {
				t.Fatalf("expected 3 transitions, got %d", count)
			}

			active, err := fx.store.FindByUserID(ctx, "u1")
			if err != nil {
				t.Fatalf("FindByUserID: %v", err)
			}
			if len(active) != 0 {
				t.Fatalf("expected no active records, got %d", len(active))
			}

			count, err = fx.store.RevokeAllForUser(ctx, "u1")
			if err != nil || count != 0 {
				t.Fatalf("expected 0 on repeat, got count=%d err=%v", count, err)
			}
		})
	}
}

func TestDeleteExpiredMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	expired := newRecord("u1", -time.Minute)
	if _, err := store.Create(ctx, expired); err != nil {
		t.Fatalf("Create: %v", err)
	}
	live := newRecord("u1", time.Hour)
	if _, err := store.Create(ctx, live); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 removed, got %d", count)
	}

	if _, err := store.FindByToken(ctx, live.Token); err != nil {
		t.Fatalf("live record should survive sweep: %v", err)
	}
	count, err = store.DeleteExpired(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected idempotent sweep, count=%d err=%v", count, err)
	}
}

func TestDeleteExpiredRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, "test:rt")
	ctx := context.Background()

	shortLived := newRecord("u1", 2*time.Second)
	if _, err := store.Create(ctx, shortLived); err != nil {
		t.Fatalf("Create: %v", err)
	}
	live := newRecord("u1", time.Hour)
	if _, err := store.Create(ctx, live); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Let key TTLs fire, then sweep the indexes.
	mr.FastForward(5 * time.Second)

	count, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 removed, got %d", count)
	}

	if _, err := store.FindByToken(ctx, live.Token); err != nil {
		t.Fatalf("live record should survive sweep: %v", err)
	}
	active, err := store.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active record after sweep, got %d", len(active))
	}
}

// A revoked token must never be observed as valid, no matter how revoke and
// find interleave.
func TestConcurrentRevokeAndFind(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			rec := newRecord("u1", time.Hour)
			if _, err := fx.store.Create(ctx, rec); err != nil {
				t.Fatalf("Create: %v", err)
			}

			revoked := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(2)

			go func() {
				defer wg.Done()
				if _, err := fx.store.RevokeByToken(ctx, rec.Token); err != nil {
					t.Errorf("RevokeByToken: %v", err)
				}
				close(revoked)
			}()

			go func() {
				defer wg.Done()
				<-revoked
				// After revoke completes, every read must miss.
				for i := 0; i < 10; i++ {
					if _, err := fx.store.FindByToken(ctx, rec.Token); !errors.Is(err, ErrNotFound) {
						t.Errorf("revoked token reported valid: %v", err)
						return
					}
				}
			}()

			wg.Wait()
		})
	}
}

func TestConcurrentCreates(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			defer fx.close()
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					rec := newRecord("u1", time.Hour)
					rec.Token = fmt.Sprintf("concurrent-%d", i)
					if _, err := fx.store.Create(ctx, rec); err != nil {
						t.Errorf("Create: %v", err)
					}
				}(i)
			}
			wg.Wait()

			active, err := fx.store.FindByUserID(ctx, "u1")
			if err != nil {
				t.Fatalf("FindByUserID: %v", err)
			}
			if len(active) != 16 {
				t.Fatalf("expected 16 active records, got %d", len(active))
			}
		})
	}
}

func TestMemoryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemory()
	if _, err := store.Create(ctx, newRecord("u1", time.Hour)); err == nil {
		t.Fatal("expected context error")
	}
}
