package authjwt

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func BenchmarkAuthenticate(b *testing.B) {
	engine := newBenchmarkEngine(b)

	login, err := engine.Login(context.Background(), Credentials{Username: "alice", Password: "correctpw"})
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}
	header := bearer(login.AccessToken)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := engine.Authenticate(context.Background(), header); !res.Authenticated() {
			b.Fatalf("authenticate failed: %v", res.Err)
		}
	}
}

func BenchmarkReissue(b *testing.B) {
	engine := newBenchmarkEngine(b)

	login, err := engine.Login(context.Background(), Credentials{Username: "alice", Password: "correctpw"})
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}
	refresh := login.RefreshToken

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := engine.Reissue(context.Background(), refresh)
		if err != nil {
			b.Fatalf("reissue failed: %v", err)
		}
		refresh = res.RefreshToken
	}
}

func BenchmarkLogin(b *testing.B) {
	engine := newBenchmarkEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Login(context.Background(), Credentials{Username: "alice", Password: "correctpw"}); err != nil {
			b.Fatalf("login failed: %v", err)
		}
	}
}

func newBenchmarkEngine(b *testing.B) *Engine {
	b.Helper()
	mr := miniredis.RunT(b)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = rdb.Close() })

	users := newFakeUsers()
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAuthenticator(users).
		WithUserLookup(users).
		Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	b.Cleanup(engine.Close)
	return engine
}
