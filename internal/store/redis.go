package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and pings the server before returning.
func NewRedisClient(ctx context.Context, cfg *RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")
	return rdb, nil
}

// RedisStore implements forecast.Store on Redis. Values are stored as JSON
// and handed back as the raw JSON string; expiry is Redis' native TTL.
type RedisStore struct {
	r      redis.Cmdable
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a new Redis-backed store. An optional prefix
// namespaces every key as "prefix:key".
func NewRedisStore(r redis.Cmdable, prefix string, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		r:      r,
		prefix: prefix,
		logger: logger.With().Str("component", "RedisStore").Logger(),
	}
}

func (s *RedisStore) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get returns the stored JSON string for key. redis.Nil is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	ns := s.namespaced(key)
	val, err := s.r.Get(ctx, ns).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", ns, err)
	}
	return val, true, nil
}

// Set stores value for key with the given TTL. Strings and byte slices are
// written verbatim; anything else is JSON-encoded.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ns := s.namespaced(key)

	var data any
	switch v := value.(type) {
	case string:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for %s: %w", ns, err)
		}
		data = b
	}

	if err := s.r.Set(ctx, ns, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", ns, err)
	}
	s.logger.Debug().Str("key", ns).Dur("ttl", ttl).Msg("Stored value in Redis.")
	return nil
}

// Name identifies the store in health reports.
func (s *RedisStore) Name() string { return "cache:redis" }

// Check pings Redis.
func (s *RedisStore) Check(ctx context.Context) error {
	return s.r.Ping(ctx).Err()
}
