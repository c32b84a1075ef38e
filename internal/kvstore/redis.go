package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/redis/go-redis/v9"
)

// Redis implements core.KeyValueStore on a Redis server.
type Redis struct {
	client *redis.Client
}

// RedisOptions holds the connection settings for NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis creates a Redis-backed store. The connection is established lazily.
func NewRedis(opts RedisOptions) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
	}
}

// Ping verifies the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	err := r.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Get reads the value of key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", core.ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("failed to get key '%s' from redis: %w", key, err)
	}

	return value, nil
}

// Put writes value under key without expiry.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	err := r.client.Set(ctx, key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set key '%s' in redis: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete key '%s' from redis: %w", key, err)
	}

	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
