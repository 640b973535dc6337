package behavior

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/bjaus/mediator"
)

// Cacheable is implemented by queries whose successful results may be
// served from a cache. Keys must be unique across every query sharing a
// store, e.g. "user:42".
type Cacheable interface {
	CacheKey() string
}

// Invalidator is implemented by commands that make cached results stale.
// After a successful dispatch the returned keys are deleted.
type Invalidator interface {
	InvalidatesCache() []string
}

// CacheOption configures Cache and Invalidate.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	logger *slog.Logger
}

// WithCacheLogger sets the logger used to report store errors. Defaults to
// slog.Default().
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *cacheConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newCacheConfig(opts []CacheOption) cacheConfig {
	cfg := cacheConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Cache serves Cacheable queries from store. Values are stored as JSON and
// decoded into R on a hit, so R must be the handler's success type. Only
// successful results are stored. Concurrent misses for the same key run the
// handler once and share its outcome.
//
// A failing store never fails the dispatch: reads fall through to the
// handler and write errors are logged.
//
// Concurrent misses for one key share a single call to next. That call
// ignores the first caller's cancellation but keeps its deadline, so one
// caller giving up does not fail the others waiting on the same key.
//
// Example:
//
//	store := behavior.NewMemoryStore(1024, time.Minute)
//	m.Use(behavior.For[users.GetUser](behavior.Cache[users.User](store)))
func Cache[R any](store Store, opts ...CacheOption) mediator.Behavior {
	cfg := newCacheConfig(opts)
	var group singleflight.Group

	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		q, ok := msg.(Cacheable)
		if !ok {
			return next(ctx, msg)
		}
		key := q.CacheKey()

		if data, hit, err := store.Get(ctx, key); err != nil {
			cfg.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		} else if hit {
			var v R
			derr := json.Unmarshal(data, &v)
			if derr == nil {
				return mediator.Ok(v), nil
			}
			cfg.logger.WarnContext(ctx, "cache entry undecodable", "key", key, "error", derr)
		}

		shared, _, _ := group.Do(key, func() (any, error) {
			ctx, cancel := sharedContext(ctx)
			defer cancel()

			res := mediator.Normalize(next(ctx, msg))
			if res.Success() {
				if data, err := json.Marshal(res.MustValue()); err != nil {
					cfg.logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
				} else if err := store.Set(ctx, key, data); err != nil {
					cfg.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
				}
			}
			return res, nil
		})
		return shared, nil
	})
}

// sharedContext detaches ctx from cancellation while keeping its values and
// deadline.
func sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return detached, func() {}
}

// Invalidate deletes the keys named by Invalidator commands once they
// succeed. Failed commands leave the cache untouched.
func Invalidate(store Store, opts ...CacheOption) mediator.Behavior {
	cfg := newCacheConfig(opts)
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		inv, ok := msg.(Invalidator)
		if !ok {
			return next(ctx, msg)
		}

		out, err := next(ctx, msg)
		if !mediator.Normalize(out, err).Success() {
			return out, err
		}
		if keys := inv.InvalidatesCache(); len(keys) > 0 {
			if derr := store.Delete(ctx, keys...); derr != nil {
				cfg.logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", derr)
			}
		}
		return out, err
	})
}
