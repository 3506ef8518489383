package authjwt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.OperationTimeout)
	assert.Equal(t, "RefreshToken", cfg.Cookie.Name)
	assert.Equal(t, "/", cfg.Cookie.Path)
	assert.True(t, cfg.Cookie.HTTPOnly)
	assert.False(t, cfg.RateLimit.EnableLoginThrottle)
	assert.False(t, cfg.Audit.Enabled)
	assert.False(t, cfg.Metrics.Enabled)

	assert.Error(t, cfg.Validate(), "default config has no secret")
	cfg.JWT.Secret = testSecret
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{"baseline", func(*Config) {}, true},
		{"short secret", func(c *Config) { c.JWT.Secret = "too-short" }, false},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, false},
		{"zero refresh ttl", func(c *Config) { c.JWT.RefreshTTL = 0 }, false},
		{"refresh shorter than access", func(c *Config) { c.JWT.RefreshTTL = time.Minute }, false},
		{"leeway valid", func(c *Config) { c.JWT.Leeway = 45 * time.Second }, true},
		{"leeway too large", func(c *Config) { c.JWT.Leeway = 3 * time.Minute }, false},
		{"leeway negative", func(c *Config) { c.JWT.Leeway = -time.Second }, false},
		{"store timeout zero", func(c *Config) { c.Store.OperationTimeout = 0 }, false},
		{"cookie name blank", func(c *Config) { c.Cookie.Name = "  " }, false},
		{"samesite strict", func(c *Config) { c.Cookie.SameSite = "Strict" }, true},
		{"samesite none secure", func(c *Config) { c.Cookie.SameSite = "none" }, true},
		{"samesite none insecure", func(c *Config) {
			c.Cookie.SameSite = "none"
			c.Cookie.Secure = false
		}, false},
		{"samesite unknown", func(c *Config) { c.Cookie.SameSite = "sometimes" }, false},
		{"login throttle without budget", func(c *Config) {
			c.RateLimit.EnableLoginThrottle = true
			c.RateLimit.MaxLoginAttempts = 0
		}, false},
		{"reissue throttle without cooldown", func(c *Config) {
			c.RateLimit.EnableReissueThrottle = true
			c.RateLimit.ReissueCooldown = 0
		}, false},
		{"audit without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBuildConfigImmutabilityAgainstExternalMutation(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	cfg := h.engine.Config()
	cfg.JWT.AccessTTL = time.Second
	assert.Equal(t, 10*time.Minute, h.engine.Config().JWT.AccessTTL)
}

func TestBuilderRequirements(t *testing.T) {
	_, rdb := newTestRedis(t)
	users := newFakeUsers()

	_, err := New().WithConfig(testConfig()).WithAuthenticator(users).WithUserLookup(users).Build()
	assert.ErrorContains(t, err, "redis client required")

	_, err = New().WithConfig(testConfig()).WithRedis(rdb).WithUserLookup(users).Build()
	assert.ErrorContains(t, err, "authenticator required")

	_, err = New().WithConfig(testConfig()).WithRedis(rdb).WithAuthenticator(users).Build()
	assert.ErrorContains(t, err, "user lookup required")

	_, err = New().WithRedis(rdb).WithAuthenticator(users).WithUserLookup(users).Build()
	assert.ErrorContains(t, err, "Secret")

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithAuthenticator(users).WithUserLookup(users)
	e, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(e.Close)
	_, err = b.Build()
	assert.ErrorContains(t, err, "builder already used")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHJWT_JWT_SECRET", testSecret)
	t.Setenv("AUTHJWT_JWT_ACCESS_TTL", "5m")
	t.Setenv("AUTHJWT_STORE_OPERATION_TIMEOUT", "100ms")
	t.Setenv("AUTHJWT_RATE_LIMIT_LOGIN_ENABLED", "true")
	t.Setenv("AUTHJWT_COOKIE_SAME_SITE", "strict")

	dir := t.TempDir()
	dotenv := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("AUTHJWT_JWT_ISSUER=from-dotenv\nAUTHJWT_JWT_ACCESS_TTL=7m\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AUTHJWT_JWT_ISSUER") })

	cfg, err := LoadConfigFromEnv(dotenv)
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL, "process env wins over dotenv")
	assert.Equal(t, "from-dotenv", cfg.JWT.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 100*time.Millisecond, cfg.Store.OperationTimeout)
	assert.True(t, cfg.RateLimit.EnableLoginThrottle)
	assert.Equal(t, "strict", cfg.Cookie.SameSite)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvMissingDotenvFile(t *testing.T) {
	_, err := LoadConfigFromEnv(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestLoadConfigFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("AUTHJWT_JWT_REFRESH_TTL", "a day")
	_, err := LoadConfigFromEnv(filepath.Join("testdata", "empty.env"))
	assert.Error(t, err)
}
