package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/logger"
	"github.com/asadazo/asadazo/pkg/notification"
)

// OrderInput is the POST /orders body. Total and DeliveryFee are the legacy
// top-level fields some carts still send instead of totals.
type OrderInput struct {
	ID              string              `json:"id"`
	Items           []models.OrderItem  `json:"items"`
	Totals          *models.OrderTotals `json:"totals"`
	Total           *decimal.Decimal    `json:"total"`
	DeliveryFee     *decimal.Decimal    `json:"deliveryFee"`
	DeliveryZone    models.DeliveryZone `json:"deliveryZone"`
	DeliveryAddress *models.Address     `json:"deliveryAddress"`
	PickupOption    bool                `json:"pickupOption"`
	Customer        models.Customer     `json:"customer"`
	Status          models.OrderStatus  `json:"status"`
}

type OrderService struct {
	orders   *repositories.OrderRepository
	bus      *event.Bus
	notifier *notification.Notifier
	pricing  models.DeliveryPricing

	Now func() time.Time
}

func NewOrderService(orders *repositories.OrderRepository, bus *event.Bus, notifier *notification.Notifier, pricing models.DeliveryPricing) *OrderService {
	return &OrderService{
		orders:   orders,
		bus:      bus,
		notifier: notifier,
		pricing:  pricing,
		Now:      time.Now,
	}
}

// Create builds an order from the checkout payload. A signed-in caller gets
// it prepended to their history; an anonymous caller only triggers the
// operator mail, synchronously, and persisted is false.
func (s *OrderService) Create(ctx context.Context, caller *auth.Claims, in OrderInput) (order models.Order, persisted bool, err error) {
	order, err = s.shape(in)
	if err != nil {
		return models.Order{}, false, err
	}

	if caller == nil {
		if err := s.notifier.Send(ctx, OrderMail{Order: order}); err != nil {
			return models.Order{}, false, err
		}
		logger.WithCtx(ctx).Info("anonymous order mailed", "customer", order.Customer.Name)
		s.bus.Fire(ctx, EventOrderCreated, OrderCreated{Order: order})
		return order, false, nil
	}

	order.UserID = caller.UserID()
	list, version, err := s.orders.Load(ctx, order.UserID)
	if err != nil {
		return models.Order{}, false, err
	}
	for _, existing := range list {
		if existing.ID == order.ID {
			return models.Order{}, false, invalid("Order ID already exists", nil)
		}
	}
	list = append([]models.Order{order}, list...)
	if err := s.orders.Save(ctx, order.UserID, list, version); err != nil {
		return models.Order{}, false, err
	}

	logger.WithCtx(ctx).Info("order created", "order_id", order.ID, "user_id", order.UserID)
	s.bus.Fire(ctx, EventOrderCreated, OrderCreated{Order: order, Persisted: true})
	return order, true, nil
}

// shape fills defaults and, when every item is priced, recomputes the totals.
func (s *OrderService) shape(in OrderInput) (models.Order, error) {
	now := s.Now().UTC()
	order := models.Order{
		ID:              in.ID,
		Items:           in.Items,
		DeliveryZone:    in.DeliveryZone,
		DeliveryAddress: in.DeliveryAddress,
		PickupOption:    in.PickupOption,
		Customer:        in.Customer,
		Status:          in.Status,
		CreatedAt:       now,
	}
	if order.ID == "" {
		order.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	} else if !order.Status.Valid() {
		return models.Order{}, invalid("Invalid order status", map[string]string{"status": "The selected status is invalid."})
	}
	if order.DeliveryZone == "" && order.PickupOption {
		order.DeliveryZone = models.ZonePickup
	}
	if order.DeliveryZone != "" && !order.DeliveryZone.Valid() {
		return models.Order{}, invalid("Invalid delivery zone", map[string]string{"deliveryZone": "The selected deliveryZone is invalid."})
	}

	switch {
	case order.Priced():
		subtotal := decimal.Zero
		for _, it := range order.Items {
			subtotal = subtotal.Add(it.Quantity.Mul(it.UnitPrice).Round(2))
		}
		fee := decimal.Zero
		if order.DeliveryZone != "" {
			var err error
			if fee, err = s.pricing.Fee(order.DeliveryZone, subtotal); err != nil {
				return models.Order{}, invalid(err.Error(), nil)
			}
		}
		order.Reprice(fee)
	case in.Totals != nil:
		order.Totals = *in.Totals
	default:
		if in.DeliveryFee != nil {
			order.Totals.DeliveryFee = *in.DeliveryFee
		}
		if in.Total != nil {
			order.Totals.Total = *in.Total
			order.Totals.Subtotal = in.Total.Sub(order.Totals.DeliveryFee)
		}
	}
	return order, nil
}

// List returns the caller's orders, newest first.
func (s *OrderService) List(ctx context.Context, caller *auth.Claims) ([]models.Order, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, "Not authenticated")
	}
	list, _, err := s.orders.Load(ctx, caller.UserID())
	return list, err
}

// Update shallow-merges in.Updates over one order.
func (s *OrderService) Update(ctx context.Context, caller *auth.Claims, in UpdateInput) (models.Order, error) {
	if caller == nil {
		return models.Order{}, newError(ErrUnauthorized, "Not authenticated")
	}
	if in.ID == "" {
		return models.Order{}, invalid("Order ID required", nil)
	}
	if raw, ok := in.Updates["status"]; ok {
		var status models.OrderStatus
		if err := json.Unmarshal(raw, &status); err != nil || !status.Valid() {
			return models.Order{}, invalid("Invalid order status", map[string]string{"status": "The selected status is invalid."})
		}
	}

	owner := in.target(caller)
	list, version, err := s.orders.Load(ctx, owner)
	if err != nil {
		return models.Order{}, err
	}
	i := -1
	for j := range list {
		if list[j].ID == in.ID {
			i = j
			break
		}
	}
	if i < 0 {
		return models.Order{}, newError(ErrNotFound, "Order not found")
	}

	next, err := models.Merge(list[i], in.Updates, immutableFields...)
	if err != nil {
		return models.Order{}, invalid(err.Error(), nil)
	}
	now := s.Now().UTC()
	next.LastModified = &now
	list[i] = next

	if err := s.orders.Save(ctx, owner, list, version); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.WithCtx(ctx).Warn("order update conflict", "order_id", in.ID, "user_id", owner)
		}
		return models.Order{}, err
	}

	s.bus.Fire(ctx, EventOrderUpdated, OrderUpdated{Order: next, By: caller.UserID()})
	return next, nil
}
