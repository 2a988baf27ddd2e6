package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asadazo/asadazo/pkg/kv"
)

const healthTTL = 30 * time.Second

type HealthService struct {
	store kv.Store
	Now   func() time.Time
}

func NewHealthService(store kv.Store) *HealthService {
	return &HealthService{store: store, Now: time.Now}
}

// Probe writes a short-lived key and reads it back.
func (s *HealthService) Probe(ctx context.Context) (string, error) {
	key := "healthcheck:" + s.Now().UTC().Format(time.RFC3339)
	if err := s.store.Set(ctx, key, []byte(`"ok"`), healthTTL); err != nil {
		return "", fmt.Errorf("kv %s: set: %w", s.store.Driver(), err)
	}
	raw, _, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("kv %s: get: %w", s.store.Driver(), err)
	}
	if string(raw) != `"ok"` {
		return "", fmt.Errorf("kv %s: read back %q", s.store.Driver(), raw)
	}
	return "ok", nil
}
