package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type balance struct {
	MosaicID string `json:"mosaicId"`
	Amount   uint64 `json:"amount"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	var got []balance
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)

	in := []balance{{MosaicID: "5F160D7851F3CB30", Amount: 10}}
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in[0].Amount = 99 // 缓存存的是副本

	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, uint64(10), got[0].Amount)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set(ctx, "k", 1, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
}

func TestMultiLevelCache(t *testing.T) {
	ctx := context.Background()
	l1 := NewMemoryCache(time.Minute, time.Minute)
	l2 := NewMemoryCache(time.Minute, time.Minute)
	m := NewMultiLevelCache(l1, l2, 0)

	require.NoError(t, m.Set(ctx, "k", balance{Amount: 1}, time.Minute))
	var got balance
	require.NoError(t, l1.Get(ctx, "k", &got))
	require.NoError(t, l2.Get(ctx, "k", &got))

	// L1 失效后从 L2 读取并回写
	require.NoError(t, l1.Delete(ctx, "k"))
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, uint64(1), got.Amount)
	require.NoError(t, l1.Get(ctx, "k", &got))

	require.NoError(t, m.Delete(ctx, "k"))
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrMiss)
}

func TestMultiLevelCache_LocalTTL(t *testing.T) {
	m := NewMultiLevelCache(nil, nil, 10*time.Second)
	assert.Equal(t, 10*time.Second, m.l1TTL(time.Minute))
	assert.Equal(t, 2*time.Second, m.l1TTL(4*time.Second))
}

// TestRedisCache 需要本地 Redis, 不可用时跳过
func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping redis test: " + err.Error())
	}

	c := NewRedisCache(client, "test")
	require.NoError(t, c.Set(ctx, "k", balance{Amount: 5}, time.Minute))
	var got balance
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, uint64(5), got.Amount)
	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}
