package service

import (
	"context"
	"log/slog"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/notifications"

	"github.com/redis/go-redis/v9"
)

// Invalidator is told after every successful circle mutation. It must not
// fail the operation that triggered it.
type Invalidator interface {
	CircleChanged(ctx context.Context, circleID string)
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(ctx context.Context, circleID string)

// CircleChanged calls f.
func (f InvalidatorFunc) CircleChanged(ctx context.Context, circleID string) {
	f(ctx, circleID)
}

type noopInvalidator struct{}

func (noopInvalidator) CircleChanged(context.Context, string) {}

// CacheInvalidator drops cached circle reads and announces the change on
// the invalidation channel.
type CacheInvalidator struct {
	rdb      *redis.Client
	notifier *notifications.Notifier
}

// NewCacheInvalidator returns an invalidator over rdb. A nil client is allowed.
func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{rdb: rdb, notifier: notifications.NewNotifier(rdb)}
}

// CircleChanged deletes the cached list and detail for circleID and
// publishes the change. Failures are logged and never returned.
func (i *CacheInvalidator) CircleChanged(ctx context.Context, circleID string) {
	if err := cache.Invalidate(ctx, i.rdb, cache.CircleKeys(circleID)...); err != nil {
		middleware.Logger.WarnContext(ctx, "circle cache invalidation failed",
			slog.String("circle_id", circleID), slog.String("error", err.Error()))
	}
	if err := i.notifier.PublishCircleInvalidation(ctx, circleID); err != nil {
		middleware.Logger.WarnContext(ctx, "circle invalidation publish failed",
			slog.String("circle_id", circleID), slog.String("error", err.Error()))
	}
}

func orNoop(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}
