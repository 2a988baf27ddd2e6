// Package repositories persists Asadazo records as JSON documents in the
// key-value store. Orders and subscriptions live in one array per user; the
// whole array is read, changed in memory and written back.
package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/asadazo/asadazo/pkg/kv"
)

// ErrConflict is returned by Save when the array changed since it was loaded.
var ErrConflict = errors.New("concurrent modification, retry")

const IndexKey = "subscriptions_index"

func OrdersKey(userID string) string        { return "orders:" + userID }
func SubscriptionsKey(userID string) string { return "subscriptions:" + userID }

// ArrayStore loads and saves a JSON array under one key.
//
// With locking enabled Save is conditional on the version Load returned.
// Without it Save overwrites blindly and concurrent writers lose updates.
type ArrayStore[T any] struct {
	store   kv.Store
	locking bool
}

func NewArrayStore[T any](store kv.Store, locking bool) *ArrayStore[T] {
	return &ArrayStore[T]{store: store, locking: locking}
}

// Load returns the array at key and its version. A missing key is an empty
// array at version 0. Values written as a JSON string holding an array are
// accepted; anything that is not an array reads as empty.
func (s *ArrayStore[T]) Load(ctx context.Context, key string) ([]T, int64, error) {
	raw, version, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("kv: get %s: %w", key, err)
	}

	items, err := decodeArray[T](raw)
	if err != nil {
		return nil, 0, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return items, version, nil
}

// Save writes items to key. version must be what Load returned.
func (s *ArrayStore[T]) Save(ctx context.Context, key string, items []T, version int64) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}

	if !s.locking {
		if err := s.store.Set(ctx, key, raw, 0); err != nil {
			return fmt.Errorf("kv: set %s: %w", key, err)
		}
		return nil
	}

	if _, err := s.store.CompareAndSet(ctx, key, raw, version); err != nil {
		if errors.Is(err, kv.ErrVersionMismatch) {
			return ErrConflict
		}
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func decodeArray[T any](raw []byte) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '[' {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
