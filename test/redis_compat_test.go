//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/authjwt"
	"github.com/MrEthical07/authjwt/session"
	"github.com/MrEthical07/authjwt/store"
)

func TestRedisCompat_Lifecycle(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			engine := newEngine(t, mode.setup(t))
			ctx := context.Background()

			res := login(t, engine)
			next, err := engine.Reissue(ctx, res.RefreshToken)
			if err != nil {
				t.Fatalf("reissue: %v", err)
			}
			if _, err := engine.Reissue(ctx, res.RefreshToken); !errors.Is(err, authjwt.ErrRefreshTokenNotFoundInStore) {
				t.Fatalf("replayed reissue: got %v", err)
			}
			if err := engine.Logout(ctx, next.AccessToken, next.RefreshToken); err != nil {
				t.Fatalf("logout: %v", err)
			}
			gate := engine.Authenticate(ctx, "Bearer "+next.AccessToken)
			if authjwt.KindOf(gate.Err) != authjwt.KindTokenBlacklisted {
				t.Fatalf("gate after logout: %+v", gate)
			}
		})
	}
}

func TestRedisCompat_ReissueRaceSingleWinner(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			engine := newEngine(t, mode.setup(t))
			res := login(t, engine)

			const workers = 16
			var (
				wg      sync.WaitGroup
				winners atomic.Int32
				losers  atomic.Int32
				start   = make(chan struct{})
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := engine.Reissue(context.Background(), res.RefreshToken)
					switch {
					case err == nil:
						winners.Add(1)
					case errors.Is(err, authjwt.ErrRefreshTokenNotFoundInStore):
						losers.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			close(start)
			wg.Wait()

			if winners.Load() != 1 || losers.Load() != workers-1 {
				t.Fatalf("winners=%d losers=%d", winners.Load(), losers.Load())
			}
		})
	}
}

func TestRedisCompat_StoreSemantics(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			s := store.NewRedisStore(mode.setup(t), 0)
			ctx := context.Background()
			key := session.RefreshKey("compat", "tid-1")

			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("delete missing key: %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("get missing key: %v", err)
			}
			if err := s.Swap(ctx, key, key+"-next", "v", time.Minute); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("swap missing key: %v", err)
			}
		})
	}
}
