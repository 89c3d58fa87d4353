package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
)

// RedisClient wraps redis.Client with the connection settings the rate
// limiter needs. The tracking core never touches Redis: lead and event
// state is always re-read from the relational store.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return &RedisClient{client: client}, nil
}

// Close closes the Redis connection
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// IncrWithWindow increments key and sets its expiry to window on first
// increment. Returns the post-increment count.
func (rc *RedisClient) IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := rc.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
