package repositories

import (
	"context"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/pkg/kv"
)

// OrderRepository reads and writes orders:<userId>.
type OrderRepository struct {
	arr *ArrayStore[models.Order]
}

func NewOrderRepository(store kv.Store, locking bool) *OrderRepository {
	return &OrderRepository{arr: NewArrayStore[models.Order](store, locking)}
}

func (r *OrderRepository) Load(ctx context.Context, userID string) ([]models.Order, int64, error) {
	return r.arr.Load(ctx, OrdersKey(userID))
}

func (r *OrderRepository) Save(ctx context.Context, userID string, orders []models.Order, version int64) error {
	return r.arr.Save(ctx, OrdersKey(userID), orders, version)
}
