package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	assert.NoError(t, NewNotifier(nil).PublishCircleInvalidation(context.Background(), "c1"))

	var n *Notifier
	assert.NoError(t, n.PublishCircleInvalidation(context.Background(), "c1"))
}

func TestCirclePaths(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"/circles/c1", "/explore", "/dashboard/mentor", "/dashboard/mentee"}, CirclePaths("c1"))
	assert.Equal(t, []string{"/explore", "/dashboard/mentor", "/dashboard/mentee"}, CirclePaths(""))
}

func TestNotifier_PublishCircleInvalidation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, CircleInvalidationChannel)
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewNotifier(rdb).PublishCircleInvalidation(ctx, "c42"))

	select {
	case msg := <-sub.Channel():
		var inv CircleInvalidation
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &inv))
		assert.Equal(t, "c42", inv.CircleID)
		assert.Contains(t, inv.Paths, "/circles/c42")
		assert.False(t, inv.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no invalidation received")
	}
}
