package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/pkg/database"
	"github.com/asadazo/asadazo/pkg/metrics"
)

// Open builds the store selected by KV_DRIVER and wraps it with metrics.
func Open(ctx context.Context) (Store, error) {
	var (
		store Store
		err   error
	)

	switch config.KVDriver() {
	case "memory":
		store = NewMemoryStore()
	case "redis":
		rs := NewRedisStore(RedisOptions{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
			DB:       config.RedisDB(),
		})
		if err = rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("kv/redis: ping %s: %w", config.RedisAddr(), err)
		}
		store = rs
	case "sql":
		db, dbErr := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
		if dbErr != nil {
			return nil, dbErr
		}
		store, err = NewSQLStore(db)
	case "mongo":
		store, err = NewMongoStore(ctx, config.MongoURI(), config.MongoDatabase(), config.MongoCollection())
	}
	if err != nil {
		return nil, err
	}

	return Instrument(store), nil
}

// ─── Instrumentation ──────────────────────────────────────────────────────────

type instrumented struct {
	Store
}

// Instrument records the latency and outcome of every call on s.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{Store: s}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "miss"
	case errors.Is(err, ErrVersionMismatch):
		result = "conflict"
	case err != nil:
		result = "error"
	}
	metrics.ObserveKV(i.Store.Driver(), op, result, start)
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, int64, error) {
	start := time.Now()
	v, ver, err := i.Store.Get(ctx, key)
	i.observe("get", start, err)
	return v, ver, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := i.Store.Set(ctx, key, value, ttl)
	i.observe("set", start, err)
	return err
}

func (i *instrumented) CompareAndSet(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	start := time.Now()
	ver, err := i.Store.CompareAndSet(ctx, key, value, expected)
	i.observe("cas", start, err)
	return ver, err
}
