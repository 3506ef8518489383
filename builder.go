package authjwt

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	internalaudit "github.com/MrEthical07/authjwt/internal/audit"
	"github.com/MrEthical07/authjwt/internal/flows"
	"github.com/MrEthical07/authjwt/internal/rate"
	"github.com/MrEthical07/authjwt/jwt"
	"github.com/MrEthical07/authjwt/session"
	"github.com/MrEthical07/authjwt/store"
)

// Builder assembles an [Engine]. A Builder can be used for a single Build call.
//
// Builder instances are intended to be configured during initialization and then treated as immutable.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  store.Store

	authenticator Authenticator
	userLookup    UserLookup
	logger        *zap.Logger
	auditSink     AuditSink
	now           func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session registry and the rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore overrides the key-value store used by the session registry. When unset
// the store is built from the client passed to [Builder.WithRedis].
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithAuthenticator sets the credential verifier used by [Engine.Login].
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.authenticator = a
	return b
}

// WithUserLookup sets the subject resolver used by [Engine.Authenticate].
func (b *Builder) WithUserLookup(l UserLookup) *Builder {
	b.userLookup = l
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit destination. Events flow only when Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the gate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithNow overrides the clock used for token and record timestamps.
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the engine.
//
// Build performs no I/O; store reachability is checked with [Engine.Ping].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil && b.store == nil {
		return nil, errors.New("redis client required")
	}
	if b.redis == nil && (cfg.RateLimit.EnableLoginThrottle || cfg.RateLimit.EnableReissueThrottle) {
		return nil, errors.New("RateLimit requires redis client")
	}
	if b.authenticator == nil {
		return nil, errors.New("authenticator required")
	}
	if b.userLookup == nil {
		return nil, errors.New("user lookup required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// -------- TOKEN CODEC --------
	jm, err := jwt.NewManager(jwt.Config{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	// -------- SESSION REGISTRY --------
	st := b.store
	if st == nil {
		st = store.NewRedisStore(b.redis, cfg.Store.OperationTimeout)
	}
	registry := session.NewRegistry(st, now)

	engine := &Engine{
		config:        cfg,
		codec:         jm,
		store:         st,
		registry:      registry,
		authenticator: b.authenticator,
		userLookup:    b.userLookup,
		logger:        logger,
		now:           now,
		metrics:       NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
			MustDeliver: []string{
				auditEventLogout,
				auditEventReissueReplayRejected,
			},
		}, b.auditSink),
	}

	// -------- RATE LIMITER --------
	var (
		loginLimiter   flows.LoginRateLimiter
		reissueLimiter flows.ReissueRateLimiter
	)
	if b.redis != nil {
		limiter := rate.New(b.redis, rate.Config{
			EnableLoginThrottle:   cfg.RateLimit.EnableLoginThrottle,
			MaxLoginAttempts:      cfg.RateLimit.MaxLoginAttempts,
			LoginCooldown:         cfg.RateLimit.LoginCooldown,
			EnableReissueThrottle: cfg.RateLimit.EnableReissueThrottle,
			MaxReissueAttempts:    cfg.RateLimit.MaxReissueAttempts,
			ReissueCooldown:       cfg.RateLimit.ReissueCooldown,
			OperationTimeout:      cfg.Store.OperationTimeout,
		})
		loginLimiter, reissueLimiter = limiter, limiter
	}

	engine.flows = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			AccessTTL:             cfg.JWT.AccessTTL,
			RefreshTTL:            cfg.JWT.RefreshTTL,
			Authenticate:          engine.authenticate,
			CountsAsFailedAttempt: countsAsFailedLogin,
			NewTokenID:            newTokenID,
			Warn:                  logger.Sugar().Warnw,
			Codec:                 jm,
			Registry:              registry,
			RateLimiter:           loginLimiter,
		},
		Reissue: flows.ReissueDeps{
			AccessTTL:   cfg.JWT.AccessTTL,
			RefreshTTL:  cfg.JWT.RefreshTTL,
			NewTokenID:  newTokenID,
			Codec:       jm,
			Registry:    registry,
			RateLimiter: reissueLimiter,
		},
		Logout: flows.LogoutDeps{
			Codec:    jm,
			Registry: registry,
		},
		Gate: flows.GateDeps{
			Codec:        jm,
			Blacklist:    registry,
			FindUser:     engine.findUserRole,
			UserNotFound: ErrUserNotFound,
		},
	})

	b.built = true

	return engine, nil
}
