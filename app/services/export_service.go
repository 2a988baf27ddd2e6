package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/pkg/collection"
	"github.com/asadazo/asadazo/pkg/logger"
	"github.com/asadazo/asadazo/pkg/storage"
)

// Snapshot is the export document.
type Snapshot struct {
	GeneratedAt   time.Time             `json:"generatedAt"`
	Subscriptions []models.Subscription `json:"subscriptions"`
	Orders        []models.Order        `json:"orders"`
}

type ExportService struct {
	subs   *SubscriptionService
	orders *repositories.OrderRepository
	Now    func() time.Time
}

func NewExportService(subs *SubscriptionService, orders *repositories.OrderRepository) *ExportService {
	return &ExportService{subs: subs, orders: orders, Now: time.Now}
}

// Build collects every indexed subscription and the orders of their owners.
func (s *ExportService) Build(ctx context.Context) (Snapshot, error) {
	subs, err := s.subs.listAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		GeneratedAt:   s.Now().UTC(),
		Subscriptions: subs,
		Orders:        []models.Order{},
	}
	owners := collection.Unique(collection.Map(subs, func(sub models.Subscription) string { return sub.UserID }))
	for _, owner := range owners {
		orders, _, err := s.orders.Load(ctx, owner)
		if err != nil {
			return Snapshot{}, err
		}
		for _, o := range orders {
			if o.UserID == "" {
				o.UserID = owner
			}
			snap.Orders = append(snap.Orders, o)
		}
	}
	return snap, nil
}

// Write builds a snapshot and stores it at path on disk.
func (s *ExportService) Write(ctx context.Context, disk storage.Disk, path string) (Snapshot, error) {
	snap, err := s.Build(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, err
	}
	if path == "" {
		path = fmt.Sprintf("exports/asadazo-%s.json", snap.GeneratedAt.Format("20060102-150405"))
	}
	if err := disk.Put(ctx, path, raw); err != nil {
		return Snapshot{}, fmt.Errorf("export: write %s: %w", path, err)
	}
	logger.WithCtx(ctx).Info("snapshot exported", "path", path,
		"subscriptions", len(snap.Subscriptions), "orders", len(snap.Orders))
	return snap, nil
}
