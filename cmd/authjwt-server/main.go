// Command authjwt-server exposes the token lifecycle engine over HTTP.
//
// Configuration is read from AUTHJWT_* environment variables and an optional
// .env file. With AUTHJWT_REDIS_EMBEDDED=true an in-process miniredis replaces
// the external Redis, which is only suitable for development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/authjwt"
	"github.com/MrEthical07/authjwt/httpapi"
	"github.com/MrEthical07/authjwt/logging"
	"github.com/MrEthical07/authjwt/metrics/export/prometheus"
	"github.com/MrEthical07/authjwt/middleware"
	"github.com/MrEthical07/authjwt/password"
	"github.com/MrEthical07/authjwt/store"
	"github.com/MrEthical07/authjwt/userstore"
)

type serverConfig struct {
	Addr            string             `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration      `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RequestTimeout  time.Duration      `env:"REQUEST_TIMEOUT" envDefault:"3s"`
	SignUpEnabled   bool               `env:"SIGNUP_ENABLED" envDefault:"false"`
	SeedUsers       []string           `env:"SEED_USERS" envSeparator:","`
	RedisEmbedded   bool               `env:"REDIS_EMBEDDED" envDefault:"false"`
	Redis           store.ClientConfig `envPrefix:"REDIS_"`
	Log             logging.Config     `envPrefix:"LOG_"`
}

type seedUser struct {
	username string
	password string
	role     string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authjwt-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := authjwt.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	var sc serverConfig
	if err := env.ParseWithOptions(&sc, env.Options{Prefix: authjwt.EnvPrefix}); err != nil {
		return fmt.Errorf("parse server environment: %w", err)
	}
	seeds, err := parseSeedUsers(sc.SeedUsers)
	if err != nil {
		return err
	}

	logger, err := logging.New(sc.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Lint().BySeverity(authjwt.LintWarn) {
		logger.Warn("config lint", zap.String("code", w.Code), zap.String("severity", w.Severity.String()), zap.String("message", w.Message))
	}

	client, closeRedis, err := openRedis(sc, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	users, err := newUserStore(seeds)
	if err != nil {
		return err
	}

	engine, err := authjwt.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAuthenticator(users).
		WithUserLookup(users).
		WithLogger(logger).
		WithAuditSink(authjwt.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	opts := httpapi.Options{
		Cookies:        middleware.NewCookieTransport(cfg.Cookie),
		RefreshTTL:     cfg.JWT.RefreshTTL,
		Logger:         logger,
		RequestTimeout: sc.RequestTimeout,
	}
	if sc.SignUpEnabled {
		opts.Registrar = users
	}
	handler, err := httpapi.NewHandler(engine, opts)
	if err != nil {
		return err
	}

	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = prometheus.New(engine).Handler()
	}

	server := &http.Server{
		Addr:              sc.Addr,
		Handler:           httpapi.NewRouter(handler, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return runServer(server, sc.ShutdownTimeout, logger)
}

func openRedis(sc serverConfig, logger *zap.Logger) (redis.UniversalClient, func(), error) {
	if sc.RedisEmbedded {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded redis: %w", err)
		}
		logger.Warn("using embedded redis; state is lost on exit", zap.String("addr", mr.Addr()))
		rc := sc.Redis
		rc.Addr = mr.Addr()
		client := store.NewClient(rc)
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := store.NewClient(sc.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), sc.Redis.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", sc.Redis.Addr, err)
	}
	logger.Info("connected to redis", zap.String("addr", sc.Redis.Addr))
	return client, func() { _ = client.Close() }, nil
}

func newUserStore(seeds []seedUser) (*userstore.Store, error) {
	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		return nil, err
	}
	users, err := userstore.New(hasher)
	if err != nil {
		return nil, err
	}
	for _, s := range seeds {
		if _, err := users.Add(s.username, s.password, s.role); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", s.username, err)
		}
	}
	return users, nil
}

// parseSeedUsers reads "username:password[:role]" entries.
func parseSeedUsers(raw []string) ([]seedUser, error) {
	out := make([]seedUser, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid seed user %q: want username:password[:role]", entry)
		}
		u := seedUser{username: parts[0], password: parts[1], role: userstore.DefaultRole}
		if len(parts) == 3 && parts[2] != "" {
			u.role = parts[2]
		}
		out = append(out, u)
	}
	return out, nil
}

func runServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case sig := <-signals:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
