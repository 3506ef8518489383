package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultOperationTimeout bounds each store call when no timeout is configured.
const DefaultOperationTimeout = 250 * time.Millisecond

const swapScript = `
if redis.call("DEL", KEYS[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`

var swapLua = redis.NewScript(swapScript)

// ClientConfig describes how to reach Redis.
type ClientConfig struct {
	Addr             string        `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Username         string        `env:"USERNAME"`
	Password         string        `env:"PASSWORD"`
	DB               int           `env:"DB" envDefault:"0"`
	PoolSize         int           `env:"POOL_SIZE" envDefault:"0"`
	MaxRetries       int           `env:"MAX_RETRIES" envDefault:"0"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT" envDefault:"2s"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"250ms"`
}

// NewClient builds a go-redis client that honours context deadlines, so the per-call
// timeout applied by [RedisStore] is enforced on the socket.
func NewClient(cfg ClientConfig) *redis.Client {
	opTimeout := cfg.OperationTimeout
	if opTimeout <= 0 {
		opTimeout = DefaultOperationTimeout
	}
	return redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Username:              cfg.Username,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		PoolSize:              cfg.PoolSize,
		MaxRetries:            cfg.MaxRetries,
		DialTimeout:           cfg.DialTimeout,
		ReadTimeout:           opTimeout,
		WriteTimeout:          opTimeout,
		ContextTimeoutEnabled: true,
	})
}

// RedisStore implements [Store] on a go-redis client.
type RedisStore struct {
	redis     redis.UniversalClient
	opTimeout time.Duration
}

// NewRedisStore wraps client. A non-positive operationTimeout selects
// [DefaultOperationTimeout].
func NewRedisStore(client redis.UniversalClient, operationTimeout time.Duration) *RedisStore {
	if operationTimeout <= 0 {
		operationTimeout = DefaultOperationTimeout
	}
	return &RedisStore{
		redis:     client,
		opTimeout: operationTimeout,
	}
}

func (s *RedisStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Get returns the value stored at key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return "", Classify("get", err)
	}
	return value, nil
}

// SetWithTTL writes value at key with the given expiry.
func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return Classify("set", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return Classify("del", err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	n, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, Classify("exists", err)
	}
	return n > 0, nil
}

// Swap deletes oldKey and writes newKey in a single Lua script. Only the caller whose
// DEL removed oldKey performs the write.
//
//	Performance: 1 EVALSHA.
func (s *RedisStore) Swap(ctx context.Context, oldKey, newKey, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	swapped, err := swapLua.Run(ctx, s.redis, []string{oldKey, newKey}, value, ttl.Milliseconds()).Int64()
	if err != nil {
		return Classify("swap", err)
	}
	if swapped == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping returns a point-in-time availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), Classify("ping", err)
	}
	return time.Since(start), nil
}

// Classify maps a go-redis error from operation op onto the store taxonomy. A
// cancelled caller context is returned wrapped but unclassified, since it says
// nothing about the health of the store.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("store: %s: %w", op, err)
	}

	var (
		netErr   net.Error
		opErr    *net.OpError
		redisErr redis.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case errors.Is(err, redis.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.As(err, &opErr):
		return fmt.Errorf("%w: %s: %v", ErrConnection, op, err)
	case errors.As(err, &redisErr):
		return fmt.Errorf("%w: %s: %v", ErrCommand, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrConnection, op, err)
	}
}
