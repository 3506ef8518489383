package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authjwt/store"
)

func newRegistryTest(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRegistry(store.NewRedisStore(rdb, time.Second), nil), mr
}

func TestCreateAndRedeemRefreshRecord(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	require.NoError(t, reg.CreateRefreshRecord(ctx, "alice", "USER", "tid-1", 24*time.Hour))
	assert.True(t, mr.Exists("refresh:alice:tid-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("refresh:alice:tid-1"))

	rec, err := reg.RedeemRefreshRecord(ctx, "alice", "tid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Subject)
	assert.Equal(t, "USER", rec.Role)
	assert.Equal(t, "tid-1", rec.TokenID)
	assert.Equal(t, int64(24*60*60), rec.ExpiresAt-rec.IssuedAt)

	assert.True(t, mr.Exists("refresh:alice:tid-1"), "redeem must not delete")
}

func TestRedeemMissingAndCorruptRecords(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	_, err := reg.RedeemRefreshRecord(ctx, "alice", "missing")
	assert.ErrorIs(t, err, ErrRefreshRecordNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mr.Set("refresh:alice:bad", "garbage"))
	_, err = reg.RedeemRefreshRecord(ctx, "alice", "bad")
	assert.ErrorIs(t, err, ErrRefreshRecordCorrupt)
}

func TestRegistryRejectsInvalidKeyParts(t *testing.T) {
	reg, _ := newRegistryTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, reg.CreateRefreshRecord(ctx, "", "USER", "tid", time.Hour), ErrInvalidKeyPart)
	assert.ErrorIs(t, reg.CreateRefreshRecord(ctx, "alice", "USER", "a:b", time.Hour), ErrInvalidKeyPart)
	assert.ErrorIs(t, reg.DeleteRefreshRecord(ctx, "alice", ""), ErrInvalidKeyPart)
	assert.ErrorIs(t, reg.RotateRefresh(ctx, "alice", "same", "same", "USER", time.Hour), ErrInvalidKeyPart)
}

func TestRotateRefreshReplacesRecord(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	require.NoError(t, reg.CreateRefreshRecord(ctx, "alice", "USER", "old", time.Hour))
	require.NoError(t, reg.RotateRefresh(ctx, "alice", "old", "new", "USER", 24*time.Hour))

	assert.False(t, mr.Exists("refresh:alice:old"))
	assert.True(t, mr.Exists("refresh:alice:new"))
	assert.Equal(t, 24*time.Hour, mr.TTL("refresh:alice:new"))

	err := reg.RotateRefresh(ctx, "alice", "old", "newer", "USER", time.Hour)
	assert.ErrorIs(t, err, ErrRefreshRecordNotFound)
	assert.False(t, mr.Exists("refresh:alice:newer"))
}

func TestRotateRefreshSingleWinner(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()
	require.NoError(t, reg.CreateRefreshRecord(ctx, "alice", "USER", "old", time.Hour))

	const workers = 12
	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs <- reg.RotateRefresh(ctx, "alice", "old", fmt.Sprintf("new-%d", i), "USER", time.Hour)
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, ErrRefreshRecordNotFound)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, mr.Keys(), 1)
}

func TestRevokeAccessToken(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	require.NoError(t, reg.RevokeAccessToken(ctx, "raw.token.value", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("blacklist:raw.token.value"))

	ok, err := reg.IsBlacklisted(ctx, "raw.token.value")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(5*time.Minute + time.Second)
	ok, err = reg.IsBlacklisted(ctx, "raw.token.value")
	require.NoError(t, err)
	assert.False(t, ok, "blacklist entry must not outlive the token")
}

func TestRevokeAccessTokenSkipsExpired(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	require.NoError(t, reg.RevokeAccessToken(ctx, "expired", 0))
	require.NoError(t, reg.RevokeAccessToken(ctx, "expired", -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestDeleteRefreshRecordIdempotent(t *testing.T) {
	reg, mr := newRegistryTest(t)
	ctx := context.Background()

	require.NoError(t, reg.CreateRefreshRecord(ctx, "alice", "USER", "tid", time.Hour))
	require.NoError(t, reg.DeleteRefreshRecord(ctx, "alice", "tid"))
	require.NoError(t, reg.DeleteRefreshRecord(ctx, "alice", "tid"))
	assert.False(t, mr.Exists("refresh:alice:tid"))
}

func TestRegistrySurfacesStoreFailures(t *testing.T) {
	reg, mr := newRegistryTest(t)
	mr.SetError("ERR injected")

	_, err := reg.IsBlacklisted(context.Background(), "tok")
	assert.ErrorIs(t, err, store.ErrCommand)

	_, err = reg.RedeemRefreshRecord(context.Background(), "alice", "tid")
	assert.ErrorIs(t, err, store.ErrCommand)
	assert.NotErrorIs(t, err, ErrRefreshRecordNotFound)
}
