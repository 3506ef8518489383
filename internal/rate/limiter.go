package rate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authjwt/store"
)

const (
	loginKeyPrefix   = "rl:login:"
	reissueKeyPrefix = "rl:reissue:"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	EnableLoginThrottle   bool
	MaxLoginAttempts      int
	LoginCooldown         time.Duration
	EnableReissueThrottle bool
	MaxReissueAttempts    int
	ReissueCooldown       time.Duration
	// OperationTimeout bounds each Redis round trip. Non-positive selects
	// store.DefaultOperationTimeout.
	OperationTimeout time.Duration
}

// Limiter enforces per-username login budgets and per-subject reissue budgets
// using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = store.DefaultOperationTimeout
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *Limiter) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, l.config.OperationTimeout)
}

// CheckLogin reports [ErrRateLimited] when username has used up its failed-login
// budget for the current window.
func (l *Limiter) CheckLogin(ctx context.Context, username string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	return l.checkCounter(ctx, loginKey(username), l.config.MaxLoginAttempts)
}

// IncrementLogin records a failed login attempt.
func (l *Limiter) IncrementLogin(ctx context.Context, username string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, loginKey(username), l.config.LoginCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

// ResetLogin clears the failed-login counter after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, username string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	ctx, cancel := l.bounded(ctx)
	defer cancel()
	return store.Classify("rate reset", l.redis.Del(ctx, loginKey(username)).Err())
}

// CheckReissue counts a reissue attempt for subject and reports [ErrRateLimited]
// once the window budget is exceeded.
func (l *Limiter) CheckReissue(ctx context.Context, subject string) error {
	if !l.config.EnableReissueThrottle {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, reissueKey(subject), l.config.ReissueCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxReissueAttempts) {
		return ErrRateLimited
	}
	return nil
}

// LoginAttempts returns the current failed-login counter for username.
// Missing keys return zero.
func (l *Limiter) LoginAttempts(ctx context.Context, username string) (int, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	count, err := l.redis.Get(ctx, loginKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, store.Classify("rate get", err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return store.Classify("rate get", err)
	}

	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, store.Classify("rate incr", err)
	}

	// Fixed window: TTL is set only on the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, store.Classify("rate expire", err)
		}
	}

	return count, nil
}

// loginKey folds case and surrounding space so spelling variants of one account
// share a budget.
func loginKey(username string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(username))
}

func reissueKey(subject string) string {
	return reissueKeyPrefix + subject
}
