// Command authcore-loadtest measures refresh store throughput: it
// seeds active sessions for a pool of users and then drives concurrent
// lookup and rotation phases against Redis, reporting latency
// percentiles per phase.
//
// By default an in-process miniredis is used, so the tool doubles as a
// quick sanity check without infrastructure. Point it at a real server
// with -redis-addr (or REDIS_ADDR) for meaningful numbers.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rafaelpmaio/authcore/refreshstore"
	"github.com/rafaelpmaio/authcore/token"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of refresh tokens to seed")
		users       = flag.Int("users", 1000, "number of distinct users to spread sessions over")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (find + rotate)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt:rt", "refresh token key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Println("using in-process miniredis at", addr)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     *concurrency * 2,
		MinIdleConns: *concurrency,
	})
	defer func() { _ = client.Close() }()

	store := refreshstore.NewRedis(client, *prefix)

	manager, err := token.NewManager(token.Config{
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		AccessSecret:  []byte("loadtest-access-secret"),
		RefreshSecret: []byte("loadtest-refresh-secret"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeding %d sessions across %d users...\n", *sessions, *users)
	tokens, err := seed(ctx, store, manager, *sessions, *users, *concurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	printStats("find  ", runFindPhase(ctx, store, tokens, *ops, *concurrency))
	printStats("rotate", runRotatePhase(ctx, store, manager, tokens, *ops, *concurrency, *users))
}

type tokenState struct {
	mu     sync.Mutex
	token  string
	userID string
}

func seed(ctx context.Context, store refreshstore.Store, manager *token.Manager, sessions, users, concurrency int) ([]*tokenState, error) {
	states := make([]*tokenState, sessions)
	var (
		wg      sync.WaitGroup
		cursor  int64
		seedErr atomic.Value
	)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= sessions || seedErr.Load() != nil {
					return
				}
				userID := fmt.Sprintf("user-%d", i%users)
				tok, err := manager.IssueRefresh(userID, userID+"@loadtest.local")
				if err != nil {
					seedErr.Store(err)
					return
				}
				rec := refreshstore.Record{
					UserID:    userID,
					Token:     tok,
					ExpiresAt: time.Now().Add(24 * time.Hour),
				}
				if _, err := store.Create(ctx, rec); err != nil {
					seedErr.Store(err)
					return
				}
				states[i] = &tokenState{token: tok, userID: userID}
			}
		}()
	}
	wg.Wait()

	if err := seedErr.Load(); err != nil {
		return nil, err.(error)
	}
	return states, nil
}

func runFindPhase(ctx context.Context, store refreshstore.Store, states []*tokenState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				state := states[r.Intn(len(states))]

				state.mu.Lock()
				current := state.token
				state.mu.Unlock()

				t0 := time.Now()
				_, err := store.FindByToken(ctx, current)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func runRotatePhase(ctx context.Context, store refreshstore.Store, manager *token.Manager, states []*tokenState, ops, concurrency, users int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				state := states[r.Intn(len(states))]

				state.mu.Lock()
				next, err := manager.IssueRefresh(state.userID, state.userID+"@loadtest.local")
				if err != nil {
					state.mu.Unlock()
					atomic.AddInt64(&failures, 1)
					continue
				}

				t0 := time.Now()
				_, revokeErr := store.RevokeByToken(ctx, state.token)
				_, createErr := store.Create(ctx, refreshstore.Record{
					UserID:    state.userID,
					Token:     next,
					ExpiresAt: time.Now().Add(24 * time.Hour),
				})
				d := time.Since(t0)

				if revokeErr != nil || createErr != nil {
					atomic.AddInt64(&failures, 1)
				} else {
					state.token = next
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
