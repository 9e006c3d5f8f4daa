package config

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis builds the Redis client used for rate limiting. Returns nil
// when no address is configured; limiting is then disabled rather than the
// process refusing to start.
func ConnectRedis(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, rate limiting disabled")
		return nil
	}

	log.WithField("addr", cfg.RedisAddr).Info("redis connected")
	return client
}
