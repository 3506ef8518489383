// Command authjwt-loadtest measures gate and reissue latency against Redis or
// an in-process miniredis.
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

	"github.com/MrEthical07/authjwt"
)

type pairState struct {
	mu      sync.Mutex
	access  string
	refresh string
}

// anyUser accepts every username and uses it as the subject.
type anyUser struct{}

func (anyUser) Authenticate(_ context.Context, username, _ string) (authjwt.Principal, error) {
	return authjwt.Principal{Subject: username, Role: "USER"}, nil
}

func (anyUser) FindBySubject(_ context.Context, subject string) (authjwt.Principal, error) {
	return authjwt.Principal{Subject: subject, Role: "USER"}, nil
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of logins to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (gate + reissue)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, AUTHJWT_REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("AUTHJWT_REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer func() { _ = client.Close() }()

	engine, err := newEngine(client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	states, err := seed(ctx, engine, *sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	gateStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		s := &states[r.Intn(len(states))]
		s.mu.Lock()
		access := s.access
		s.mu.Unlock()
		if res := engine.Authenticate(ctx, "Bearer "+access); !res.Authenticated() {
			return res.Err
		}
		return nil
	})

	reissueStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		s := &states[r.Intn(len(states))]
		s.mu.Lock()
		defer s.mu.Unlock()
		res, err := engine.Reissue(ctx, s.refresh)
		if err != nil {
			return err
		}
		s.access, s.refresh = res.AccessToken, res.RefreshToken
		return nil
	})

	fmt.Println("---- results ----")
	printStats("gate", gateStats)
	printStats("reissue", reissueStats)
	snap := engine.MetricsSnapshot()
	fmt.Printf("replay rejections=%d store failures=%d\n",
		snap.Counters[authjwt.MetricReissueReplayRejected],
		snap.Counters[authjwt.MetricStoreFailure],
	)
}

func newEngine(client redis.UniversalClient) (*authjwt.Engine, error) {
	cfg := authjwt.DefaultConfig()
	cfg.JWT.Secret = os.Getenv("AUTHJWT_JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "loadtest-secret-loadtest-secret-0"
	}
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return authjwt.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAuthenticator(anyUser{}).
		WithUserLookup(anyUser{}).
		Build()
}

func seed(ctx context.Context, engine *authjwt.Engine, n int) ([]pairState, error) {
	fmt.Printf("seeding %d logins...\n", n)
	start := time.Now()
	states := make([]pairState, n)
	for i := range states {
		res, err := engine.Login(ctx, authjwt.Credentials{Username: fmt.Sprintf("user-%d", i), Password: "x"})
		if err != nil {
			return nil, err
		}
		states[i].access, states[i].refresh = res.AccessToken, res.RefreshToken
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return states, nil
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
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
				if int(atomic.AddInt64(&cursor, 1)) > ops {
					return
				}
				t0 := time.Now()
				err := op(r)
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
	return samples[(len(samples)-1)*p/100]
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
