package database

import (
	"context"
	"fmt"

	"yamdb/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client. An empty address means
// Redis is not configured and returns nil, nil.
func NewRedisClient(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}
	return rdb, nil
}
