package authjwt

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/MrEthical07/authjwt/jwt"
)

// EnvPrefix prefixes every environment variable read by [LoadConfigFromEnv].
const EnvPrefix = "AUTHJWT_"

// Config holds every engine setting.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Cookie    CookieConfig    `envPrefix:"COOKIE_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures token issuance and verification. Both token categories are
// signed with HS256 using Secret.
type JWTConfig struct {
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"10m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"24h"`
	// Secret must be at least 32 bytes.
	Secret string        `env:"SECRET"`
	Issuer string        `env:"ISSUER"`
	Leeway time.Duration `env:"LEEWAY" envDefault:"0s"`
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig bounds every key-value store round trip.
type StoreConfig struct {
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"250ms"`
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig shapes the refresh token cookie written by the HTTP transport.
type CookieConfig struct {
	Name     string `env:"NAME" envDefault:"RefreshToken"`
	Path     string `env:"PATH" envDefault:"/"`
	Domain   string `env:"DOMAIN"`
	Secure   bool   `env:"SECURE" envDefault:"true"`
	HTTPOnly bool   `env:"HTTP_ONLY" envDefault:"true"`
	// SameSite is one of "lax", "strict", "none" or "" for the browser default.
	SameSite string `env:"SAME_SITE" envDefault:"lax"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig enables the optional login and reissue throttles.
type RateLimitConfig struct {
	EnableLoginThrottle   bool          `env:"LOGIN_ENABLED" envDefault:"false"`
	MaxLoginAttempts      int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginCooldown         time.Duration `env:"LOGIN_COOLDOWN" envDefault:"15m"`
	EnableReissueThrottle bool          `env:"REISSUE_ENABLED" envDefault:"false"`
	MaxReissueAttempts    int           `env:"REISSUE_MAX_ATTEMPTS" envDefault:"30"`
	ReissueCooldown       time.Duration `env:"REISSUE_COOLDOWN" envDefault:"1m"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED" envDefault:"false"`
	BufferSize int  `env:"BUFFER_SIZE" envDefault:"1024"`
	DropIfFull bool `env:"DROP_IF_FULL" envDefault:"true"`
}

// MetricsConfig configures in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED" envDefault:"false"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS" envDefault:"false"`
}

// DefaultConfig returns the baseline configuration: 10 minute access tokens, 24 hour
// refresh tokens, a 250ms store timeout, and throttling, audit and metrics off. The
// JWT secret is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  10 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			OperationTimeout: 250 * time.Millisecond,
		},
		Cookie: CookieConfig{
			Name:     "RefreshToken",
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
			SameSite: "lax",
		},
		RateLimit: RateLimitConfig{
			MaxLoginAttempts:   5,
			LoginCooldown:      15 * time.Minute,
			MaxReissueAttempts: 30,
			ReissueCooldown:    time.Minute,
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = strings.Clone(cfg.JWT.Secret)
	return out
}

// LoadConfigFromEnv builds a Config from [DefaultConfig] overlaid with AUTHJWT_*
// environment variables. Each file in dotenvFiles is loaded first; with none given
// a .env file in the working directory is loaded when present. Variables already
// set in the process environment win over dotenv values.
func LoadConfigFromEnv(dotenvFiles ...string) (Config, error) {
	if err := loadDotenv(dotenvFiles...); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if len(c.JWT.Secret) < jwt.MinSecretLength {
		return fmt.Errorf("JWT Secret must be at least %d bytes", jwt.MinSecretLength)
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Store
	if c.Store.OperationTimeout <= 0 {
		return errors.New("Store OperationTimeout must be > 0")
	}

	// Cookie
	if strings.TrimSpace(c.Cookie.Name) == "" {
		return errors.New("Cookie Name must not be empty")
	}
	switch strings.ToLower(c.Cookie.SameSite) {
	case "", "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			return errors.New("Cookie SameSite=none requires Secure")
		}
	default:
		return fmt.Errorf("Cookie SameSite %q is not one of lax, strict, none", c.Cookie.SameSite)
	}

	// Rate limits
	if c.RateLimit.EnableLoginThrottle {
		if c.RateLimit.MaxLoginAttempts <= 0 {
			return errors.New("RateLimit MaxLoginAttempts must be > 0 when login throttle is enabled")
		}
		if c.RateLimit.LoginCooldown <= 0 {
			return errors.New("RateLimit LoginCooldown must be > 0 when login throttle is enabled")
		}
	}
	if c.RateLimit.EnableReissueThrottle {
		if c.RateLimit.MaxReissueAttempts <= 0 {
			return errors.New("RateLimit MaxReissueAttempts must be > 0 when reissue throttle is enabled")
		}
		if c.RateLimit.ReissueCooldown <= 0 {
			return errors.New("RateLimit ReissueCooldown must be > 0 when reissue throttle is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
