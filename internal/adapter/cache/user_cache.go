package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "usuarios-api/internal/domain/user"
	"usuarios-api/pkg/logger"
)

const keyPrefix = "user:"

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id string) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("cache"),
	}
}

func (c *RedisUserCache) withCtx(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, c.log)
}

// Key returns the Redis key holding the user with the given ID.
func Key(id string) string {
	return keyPrefix + id
}

// Get returns the cached user, or nil, nil on a miss.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	log := c.withCtx(ctx)
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Debug("cache miss", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get from cache", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		log.Error("failed to unmarshal cached user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	log.Debug("cache hit", zap.String("user_id", id))
	return &user, nil
}

// Set stores a user as JSON under Key(user.ID) for the configured TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	log := c.withCtx(ctx)
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		log.Error("failed to marshal user for cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete evicts a user. Deleting a missing key is not an error.
func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	log := c.withCtx(ctx)
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		log.Error("failed to delete from cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	log.Debug("deleted from cache", zap.String("user_id", id))
	return nil
}
