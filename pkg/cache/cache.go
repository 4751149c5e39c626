package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store wraps the Redis client used for the login rate-limit window and the
// session registry. Construction never fails: an unreachable Redis only logs a
// warning and every operation then returns redis errors the callers treat as
// best-effort.
type Store struct {
	client *redis.Client
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and pings it once to surface connectivity problems
// early.
func New(cfg Config, log *zap.Logger) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Warn("could not connect to redis, rate limiting and session registry degraded",
			zap.String("addr", cfg.Addr), zap.Error(err))
	}

	return &Store{client: client}
}

// IncrWindow increments a counter under key, starting a TTL window on first
// increment, and returns the new count. Used for per-IP login throttling.
func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		s.client.Expire(ctx, key, window)
	}
	return count, nil
}

// Set stores a value with an expiration.
func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys and returns how many actually existed.
func (s *Store) Delete(ctx context.Context, keys ...string) (int64, error) {
	return s.client.Del(ctx, keys...).Result()
}
