package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 缓存中没有该键
var ErrMiss = errors.New("cache miss")

// Cache 定义通用缓存接口
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 获取缓存, 并将结果 Unmarshal 到 target 中; 未命中返回 ErrMiss
	Get(ctx context.Context, key string, target interface{}) error
	Delete(ctx context.Context, key string) error
}
