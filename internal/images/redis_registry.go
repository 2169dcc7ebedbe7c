package images

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reloadpress/autopost/internal/logger"
)

const redisRegistryKey = "autopost:used_images"

// RedisRegistry stores issued identifiers in a Redis set, for
// deployments where runs move between hosts and a local file cannot be
// the durable scope. Lookup errors degrade to "not used": a transient
// Redis failure must not be able to stall the whole batch, at worst it
// risks one repeated image.
type RedisRegistry struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisRegistry creates a Redis-backed registry.
func NewRedisRegistry(client *redis.Client, log logger.Logger) *RedisRegistry {
	return &RedisRegistry{client: client, logger: log}
}

func (r *RedisRegistry) Contains(ctx context.Context, id string) bool {
	used, err := r.client.SIsMember(ctx, redisRegistryKey, id).Result()
	if err != nil {
		r.logger.Error("redis error checking used image",
			logger.String("source_id", id),
			logger.String("redis_key", redisRegistryKey),
			logger.Error(err),
		)
		return false
	}
	return used
}

func (r *RedisRegistry) Add(ctx context.Context, id string) error {
	if err := r.client.SAdd(ctx, redisRegistryKey, id).Err(); err != nil {
		r.logger.Error("redis error recording used image",
			logger.String("source_id", id),
			logger.String("redis_key", redisRegistryKey),
			logger.Error(err),
		)
		return fmt.Errorf("record used image: %w", err)
	}
	return nil
}

// Flush is a no-op: SADD is durable as soon as it returns.
func (r *RedisRegistry) Flush(context.Context) error { return nil }

// Reset clears the campaign's used set.
func (r *RedisRegistry) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, redisRegistryKey).Err(); err != nil {
		return fmt.Errorf("clear used images: %w", err)
	}
	r.logger.Info("used-image registry cleared",
		logger.String("redis_key", redisRegistryKey),
	)
	return nil
}
