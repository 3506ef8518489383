package main

import (
	"testing"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedUsers(t *testing.T) {
	seeds, err := parseSeedUsers([]string{"alice:alice-password", " bob:bob-password:ADMIN ", ""})
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, seedUser{username: "alice", password: "alice-password", role: "USER"}, seeds[0])
	assert.Equal(t, "ADMIN", seeds[1].role)

	_, err = parseSeedUsers([]string{"nopassword"})
	assert.Error(t, err)
	_, err = parseSeedUsers([]string{":secret"})
	assert.Error(t, err)
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHJWT_ADDR", ":9999")
	t.Setenv("AUTHJWT_REDIS_EMBEDDED", "true")
	t.Setenv("AUTHJWT_REDIS_ADDR", "redis:6380")
	t.Setenv("AUTHJWT_LOG_LEVEL", "debug")
	t.Setenv("AUTHJWT_SEED_USERS", "alice:alice-password,bob:bob-password:ADMIN")

	var sc serverConfig
	require.NoError(t, env.ParseWithOptions(&sc, env.Options{Prefix: "AUTHJWT_"}))
	assert.Equal(t, ":9999", sc.Addr)
	assert.True(t, sc.RedisEmbedded)
	assert.Equal(t, "redis:6380", sc.Redis.Addr)
	assert.Equal(t, "debug", sc.Log.Level)
	assert.Len(t, sc.SeedUsers, 2)
	assert.False(t, sc.SignUpEnabled)
}

func TestNewUserStoreSeeds(t *testing.T) {
	users, err := newUserStore([]seedUser{{username: "alice", password: "alice-password", role: "USER"}})
	require.NoError(t, err)
	_, err = newUserStore([]seedUser{{username: "x", password: "short", role: "USER"}})
	assert.Error(t, err)
	assert.NotNil(t, users)
}
