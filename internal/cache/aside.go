package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"blogchef/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent, the value cannot be
// decoded, or the cache is unavailable. Callers treat all three the same way:
// read the authoritative store.
var ErrMiss = errors.New("cache miss")

// Get loads the JSON value stored under key into dest.
func Get(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrMiss
	}

	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		}
		return ErrMiss
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		slog.WarnContext(ctx, "cache value corrupt, treating as miss", "key", key, "err", err)
		return ErrMiss
	}
	return nil
}

// Set JSON-encodes value and stores it under key with the given TTL.
// Failures are logged and swallowed; the cache is never authoritative.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache set skipped, value not serializable", "key", key, "err", err)
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

// Aside implements the read-through contract: probe the cache, and on miss run
// fetch against the authoritative store, hand the result back immediately, and
// populate the cache from a goroutine. Population never blocks or fails the
// caller's response.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)

	if err := Get(ctx, key, dest); err == nil {
		middleware.CacheRequests.WithLabelValues(family, "hit").Inc()
		return nil
	}
	middleware.CacheRequests.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	// The request context may be cancelled as soon as the response is
	// written, so populate with a detached context.
	bg := context.WithoutCancel(ctx)
	snapshot, err := json.Marshal(dest)
	if err != nil {
		slog.WarnContext(ctx, "cache populate skipped, value not serializable", "key", key, "err", err)
		return nil
	}
	go func() {
		if client == nil {
			return
		}
		setCtx, cancel := context.WithTimeout(bg, 5*time.Second)
		defer cancel()
		if err := client.Set(setCtx, key, snapshot, ttl).Err(); err != nil {
			slog.Warn("cache populate failed", "key", key, "err", err)
		}
	}()

	return nil
}

// keyFamily collapses per-id keys into their family for metric labels.
func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
