package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/pkg/kv"
)

// SubscriptionRepository reads and writes subscriptions:<userId>.
type SubscriptionRepository struct {
	arr *ArrayStore[models.Subscription]
}

func NewSubscriptionRepository(store kv.Store, locking bool) *SubscriptionRepository {
	return &SubscriptionRepository{arr: NewArrayStore[models.Subscription](store, locking)}
}

func (r *SubscriptionRepository) Load(ctx context.Context, userID string) ([]models.Subscription, int64, error) {
	return r.arr.Load(ctx, SubscriptionsKey(userID))
}

func (r *SubscriptionRepository) Save(ctx context.Context, userID string, subs []models.Subscription, version int64) error {
	return r.arr.Save(ctx, SubscriptionsKey(userID), subs, version)
}

// ─── Index ────────────────────────────────────────────────────────────────────

// indexAttempts bounds Add's re-read loop. Adding to the index is a set
// insert, so replaying it on a fresh read cannot lose anyone's entry.
const indexAttempts = 5

// SubscriptionIndex maintains subscriptions_index, the list of
// {id, userId} pairs that lets an admin enumerate every subscription
// without scanning user keys.
type SubscriptionIndex struct {
	arr *ArrayStore[models.IndexEntry]
}

func NewSubscriptionIndex(store kv.Store, locking bool) *SubscriptionIndex {
	return &SubscriptionIndex{arr: NewArrayStore[models.IndexEntry](store, locking)}
}

// Add records id → userID. Adding an id that is already present is a no-op.
func (x *SubscriptionIndex) Add(ctx context.Context, id, userID string) error {
	var err error
	for attempt := 0; attempt < indexAttempts; attempt++ {
		var (
			entries []models.IndexEntry
			version int64
		)
		entries, version, err = x.arr.Load(ctx, IndexKey)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.ID == id {
				return nil
			}
		}

		err = x.arr.Save(ctx, IndexKey, append(entries, models.IndexEntry{ID: id, UserID: userID}), version)
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("index add %s: %w", id, err)
}

// List returns every entry in insertion order.
func (x *SubscriptionIndex) List(ctx context.Context) ([]models.IndexEntry, error) {
	entries, _, err := x.arr.Load(ctx, IndexKey)
	return entries, err
}
