package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mentorcircles/internal/middleware"
	"mentorcircles/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Aside is a cache-aside reader over Redis. Concurrent misses for the same
// key share one load. A nil Redis client turns it into a pass-through that
// still coalesces loads.
type Aside struct {
	rdb   *redis.Client
	group singleflight.Group
}

func NewAside(rdb *redis.Client) *Aside {
	return &Aside{rdb: rdb}
}

// Fetch fills dest from key, or from load on a miss, caching the JSON
// encoding of load's result for ttl. Cache failures never fail the read.
func (a *Aside) Fetch(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	if a.rdb != nil {
		raw, err := a.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				observability.CacheLookups.WithLabelValues("hit").Inc()
				return nil
			}
			observability.CacheLookups.WithLabelValues("error").Inc()
		case errors.Is(err, redis.Nil):
			observability.CacheLookups.WithLabelValues("miss").Inc()
		default:
			observability.CacheLookups.WithLabelValues("error").Inc()
			middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if a.rdb != nil {
			if err := a.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
				middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}
