//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authjwt"
)

const testSecret = "integration-secret-integration-01"

// redisMode describes which Redis backend a suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) redis.UniversalClient
}

// redisModes always includes miniredis. A real server is added when
// REDIS_ADDR is set.
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{{
		name: "miniredis",
		setup: func(t *testing.T) redis.UniversalClient {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return rdb
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) redis.UniversalClient {
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ping(t, rdb)
				rdb.FlushDB(context.Background())
				t.Cleanup(func() { rdb.FlushDB(context.Background()); _ = rdb.Close() })
				return rdb
			},
		})
	}

	return modes
}

func ping(t *testing.T, rdb redis.UniversalClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("cannot reach redis: %v", err)
	}
}

type staticUsers struct {
	mu    sync.RWMutex
	roles map[string]string
}

func newStaticUsers() *staticUsers {
	return &staticUsers{roles: map[string]string{"alice": "USER", "root": "ADMIN"}}
}

func (u *staticUsers) Authenticate(_ context.Context, username, password string) (authjwt.Principal, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	role, ok := u.roles[username]
	if !ok || password != username+"-pw" {
		return authjwt.Principal{}, authjwt.ErrBadCredentials
	}
	return authjwt.Principal{Subject: username, Role: role}, nil
}

func (u *staticUsers) FindBySubject(_ context.Context, subject string) (authjwt.Principal, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	role, ok := u.roles[subject]
	if !ok {
		return authjwt.Principal{}, authjwt.ErrUserNotFound
	}
	return authjwt.Principal{Subject: subject, Role: role}, nil
}

func newEngine(t *testing.T, rdb redis.UniversalClient) *authjwt.Engine {
	t.Helper()
	cfg := authjwt.DefaultConfig()
	cfg.JWT.Secret = testSecret
	engine, err := authjwt.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAuthenticator(newStaticUsers()).
		WithUserLookup(newStaticUsers()).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// cmdCounter is a go-redis hook counting round trips.
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset()          { h.commands.Store(0); h.pipelines.Store(0) }
func (h *cmdCounter) Commands() int64 { return h.commands.Load() }
