// Package kv is the key-value store every Asadazo record lives in.
//
// Values are opaque byte slices (JSON documents in practice). Each key also
// carries a monotonically increasing version maintained by the driver, so
// callers can do read-modify-write with a conditional save:
//
//	val, ver, err := store.Get(ctx, "orders:42")
//	// ... mutate ...
//	_, err = store.CompareAndSet(ctx, "orders:42", newVal, ver)
//	if errors.Is(err, kv.ErrVersionMismatch) {
//	    // someone else wrote in between
//	}
//
// Drivers: memory, redis, sql (gorm), mongo. Pick one with KV_DRIVER.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key does not exist or expired.
	ErrNotFound = errors.New("kv: key not found")

	// ErrVersionMismatch is returned by CompareAndSet when the stored version
	// differs from the expected one.
	ErrVersionMismatch = errors.New("kv: version mismatch")
)

// Store is implemented by every driver.
type Store interface {
	// Get returns the value and its version. Missing keys yield ErrNotFound
	// with version 0.
	Get(ctx context.Context, key string) ([]byte, int64, error)

	// Set writes unconditionally and bumps the version. ttl <= 0 means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CompareAndSet writes only if the stored version equals expected
	// (0 means "key must not exist yet") and returns the new version.
	CompareAndSet(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases driver resources.
	Close() error

	// Driver names the backend ("memory", "redis", "sql", "mongo").
	Driver() string
}

func expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}
