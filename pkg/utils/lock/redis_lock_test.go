package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要本地 Redis, 不可用时跳过
func TestRedisLock(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping redis test: " + err.Error())
	}

	a, b := NewRedisLock(client), NewRedisLock(client)
	ok, err := a.Acquire(ctx, "test-refresh", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "test-refresh", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// 别人的锁释放不掉
	require.NoError(t, b.Release(ctx, "test-refresh"))
	ok, _ = b.Acquire(ctx, "test-refresh", time.Second)
	assert.False(t, ok)

	require.NoError(t, a.Release(ctx, "test-refresh"))
	ok, err = b.Acquire(ctx, "test-refresh", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, b.Release(ctx, "test-refresh"))
}
