// Package app wires the users domain, the mediator and its behaviors, the
// envelope inbox and the HTTP surface into one runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bjaus/mediator"
	"github.com/bjaus/mediator/behavior"
	"github.com/bjaus/mediator/envelope"
	"github.com/bjaus/mediator/internal/config"
	"github.com/bjaus/mediator/internal/users"
)

// SystemPrincipal is used for dispatches the process makes on its own
// behalf, such as seeding the administrator.
var SystemPrincipal = behavior.Principal{ID: "system", Roles: []string{users.RoleAdmin}}

// App is a fully wired userapp process.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	mediator *mediator.Mediator
	inbox    *envelope.Inbox
	metrics  *prometheus.Registry
	store    behavior.Store
	handler  http.Handler

	repo   users.Repository
	hasher users.Hasher
	redis  *redis.Client
}

// Option configures an App.
type Option func(*App)

// WithRepository replaces the in-memory user repository.
func WithRepository(repo users.Repository) Option {
	return func(a *App) { a.repo = repo }
}

// WithHasher replaces the bcrypt password hasher.
func WithHasher(h users.Hasher) Option {
	return func(a *App) { a.hasher = h }
}

// New builds an App from cfg. It registers the users handlers, assembles
// the behavior chain, binds the envelope keys and seeds the administrator
// when one is configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: prometheus.NewRegistry(),
		repo:    users.NewMemoryRepository(),
		hasher:  users.BcryptHasher{Cost: cfg.Admin.BcryptCost},
	}
	for _, opt := range opts {
		opt(a)
	}

	reg := mediator.NewRegistry()
	if err := users.Register(reg, a.repo, a.hasher); err != nil {
		return nil, fmt.Errorf("register users: %w", err)
	}

	a.mediator = mediator.New(reg,
		mediator.WithLogger(logger),
		mediator.WithOnNoHandler(func(ctx context.Context, message string) {
			logger.WarnContext(ctx, "no handler", "message", message)
		}),
	)

	if err := a.use(); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.inbox = envelope.New(a.mediator,
		envelope.WithOnNoSource(func(ctx context.Context, raw []byte) {
			logger.DebugContext(ctx, "envelope unrecognized", "size", len(raw))
		}),
		envelope.WithOnNoBinding(func(ctx context.Context, source, key string) {
			logger.WarnContext(ctx, "envelope unbound", "source", source, "key", key)
		}),
		envelope.WithOnDecodeError(func(ctx context.Context, source, key string, err error) {
			logger.DebugContext(ctx, "envelope rejected", "source", source, "key", key, "error", err)
		}),
	)
	a.inbox.AddSource(envelope.TypedSource(), envelope.CloudEventSource())
	if err := users.Bind(a.inbox); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("bind envelopes: %w", err)
	}

	if err := a.seed(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.handler = a.routes()
	return a, nil
}

// use assembles the behavior chain. The first behavior is outermost.
func (a *App) use() error {
	cfg := a.cfg

	a.mediator.Use(behavior.Logging(a.logger))

	if cfg.Metrics.Enabled {
		a.metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := behavior.NewMetrics(a.metrics, cfg.Metrics.Namespace)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		a.mediator.Use(m)
	}

	if cfg.Dispatch.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Dispatch.RateLimit), cfg.Dispatch.RateBurst)
		a.mediator.Use(behavior.RateLimit(limiter))
	}

	a.mediator.Use(
		behavior.Timeout(cfg.Dispatch.Timeout.Duration),
		behavior.Authorization(),
		behavior.Validation(),
	)

	if store := a.newStore(); store != nil {
		a.store = store
		a.mediator.Use(
			behavior.Invalidate(store, behavior.WithCacheLogger(a.logger)),
			behavior.For[users.GetUser](behavior.Cache[users.User](store, behavior.WithCacheLogger(a.logger))),
		)
	}

	a.mediator.Use(behavior.Retry(behavior.RetryConfig{
		MaxAttempts: cfg.Dispatch.RetryAttempts,
		Backoff:     behavior.ExponentialBackoff(cfg.Dispatch.RetryBackoff.Duration, 2, 10*cfg.Dispatch.RetryBackoff.Duration, 0.2),
	}))
	return nil
}

func (a *App) newStore() behavior.Store {
	c := a.cfg.Cache
	switch c.Backend {
	case config.CacheRedis:
		a.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		return behavior.NewRedisStore(a.redis, c.RedisPrefix, c.TTL.Duration)
	case config.CacheMemory:
		return behavior.NewMemoryStore(c.Size, c.TTL.Duration)
	default:
		return nil
	}
}

// seed creates the configured administrator. An existing account with the
// same username is left alone.
func (a *App) seed(ctx context.Context) error {
	admin := a.cfg.Admin
	if admin.Username == "" {
		return nil
	}

	ctx = behavior.WithPrincipal(ctx, SystemPrincipal)
	res, err := a.mediator.Send(ctx, users.CreateUser{
		Username: admin.Username,
		Password: admin.Password,
		Roles:    []string{users.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if !res.Success() {
		if res.MustCode() == mediator.CodeConflict {
			a.logger.DebugContext(ctx, "admin exists", "username", admin.Username)
			return nil
		}
		return fmt.Errorf("seed admin: %w", res.Err())
	}
	a.logger.InfoContext(ctx, "admin seeded", "username", admin.Username)
	return nil
}

// Mediator returns the wired mediator.
func (a *App) Mediator() *mediator.Mediator { return a.mediator }

// Inbox returns the wired envelope inbox.
func (a *App) Inbox() *envelope.Inbox { return a.inbox }

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves HTTP on the configured address until ctx is done, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout.Duration,
		WriteTimeout: a.cfg.HTTP.WriteTimeout.Duration,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.InfoContext(ctx, "http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		a.logger.InfoContext(shutdownCtx, "http shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases external connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
