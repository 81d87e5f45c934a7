// Package notifications publishes change signals to Redis channels for UI cache revalidation.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CircleInvalidationChannel carries one message per successful circle mutation.
const CircleInvalidationChannel = "circles:invalidate"

// CircleInvalidation tells UI instances which pages to revalidate.
type CircleInvalidation struct {
	CircleID string    `json:"circle_id"`
	Paths    []string  `json:"paths"`
	At       time.Time `json:"at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// CirclePaths are the UI routes that render data about circleID.
func CirclePaths(circleID string) []string {
	paths := []string{"/explore", "/dashboard/mentor", "/dashboard/mentee"}
	if circleID != "" {
		paths = append([]string{"/circles/" + circleID}, paths...)
	}
	return paths
}

// PublishCircleInvalidation publishes a revalidation signal for circleID.
// A nil Redis client is a no-op.
func (n *Notifier) PublishCircleInvalidation(ctx context.Context, circleID string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(CircleInvalidation{
		CircleID: circleID,
		Paths:    CirclePaths(circleID),
		At:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}
	return n.rdb.Publish(ctx, CircleInvalidationChannel, payload).Err()
}
