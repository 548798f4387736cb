// Package redisx opens the optional Redis client used for cross-process locks.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"planeat-api/internal/config"
	"planeat-api/internal/logx"
)

// Client is an alias for a Redis client
type Client = redis.Client

var redisLogger = logx.GetScope("redis")

// Open creates a Redis client when REDIS_ADDR is set. A nil client means
// Redis is disabled.
func Open(cfg *config.Config) (*Client, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, func() {}, err
	}
	redisLogger.Sugar().Infof("redis connected at %s", cfg.Redis.Addr)
	closer := func() { _ = rdb.Close() }
	return rdb, closer, nil
}
