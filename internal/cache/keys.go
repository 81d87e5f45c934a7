package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CircleListKey    = "circles:list"
	circleKeyPrefix  = "circle:%s"
	userSeenPrefix   = "user:%s:seen"
	tokenBlacklistFn = "blacklist:%s"
)

const (
	CircleListTTL = time.Minute
	CircleTTL     = 2 * time.Minute
	UserSeenTTL   = 5 * time.Minute
)

func CircleKey(circleID string) string {
	return fmt.Sprintf(circleKeyPrefix, circleID)
}

func UserSeenKey(userID string) string {
	return fmt.Sprintf(userSeenPrefix, userID)
}

func TokenBlacklistKey(jti string) string {
	return fmt.Sprintf(tokenBlacklistFn, jti)
}

// CircleKeys are the cached entries affected by a change to one circle.
func CircleKeys(circleID string) []string {
	return []string{CircleListKey, CircleKey(circleID)}
}

// Invalidate deletes keys. A nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
