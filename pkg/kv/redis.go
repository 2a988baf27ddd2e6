package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis driver.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each value under its own key and the version under
// "<key>:__v", so the value keys stay plain JSON readable by other tools.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(opts RedisOptions) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

func versionKey(key string) string { return key + ":__v" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	vals, err := s.rdb.MGet(ctx, key, versionKey(key)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("kv/redis: get %s: %w", key, err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, 0, ErrNotFound
	}
	return []byte(raw), parseVersion(vals[1]), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if ttl > 0 {
			pipe.Set(ctx, key, value, ttl)
			pipe.Incr(ctx, versionKey(key))
			pipe.Expire(ctx, versionKey(key), ttl)
			return nil
		}
		pipe.Set(ctx, key, value, 0)
		pipe.Incr(ctx, versionKey(key))
		pipe.Persist(ctx, versionKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv/redis: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) CompareAndSet(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	var next int64

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, versionKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current := parseVersion(cur)
		if current != expected {
			next = current
			return ErrVersionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			pipe.Set(ctx, versionKey(key), current+1, 0)
			return nil
		})
		next = current + 1
		return err
	}

	err := s.rdb.Watch(ctx, txf, versionKey(key))
	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, ErrVersionMismatch):
		return next, ErrVersionMismatch
	case errors.Is(err, redis.TxFailedErr):
		return 0, ErrVersionMismatch
	default:
		return 0, fmt.Errorf("kv/redis: cas %s: %w", key, err)
	}
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }
func (s *RedisStore) Close() error                   { return s.rdb.Close() }
func (s *RedisStore) Driver() string                 { return "redis" }

func parseVersion(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
