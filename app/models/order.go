package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type DeliveryZone string

const (
	ZonePickup      DeliveryZone = "pickup"
	ZoneInsideRing  DeliveryZone = "inside-ring"
	ZoneOutsideRing DeliveryZone = "outside-ring"
)

func (z DeliveryZone) Valid() bool {
	switch z {
	case ZonePickup, ZoneInsideRing, ZoneOutsideRing:
		return true
	}
	return false
}

// OrderItem is one cart line. Quantity is in kg.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

type Customer struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// Order is one element of the orders:<userId> array. New orders are
// prepended so the array reads newest first.
type Order struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId,omitempty"`
	Items           []OrderItem  `json:"items"`
	Totals          OrderTotals  `json:"totals"`
	DeliveryZone    DeliveryZone `json:"deliveryZone,omitempty"`
	DeliveryAddress *Address     `json:"deliveryAddress,omitempty"`
	PickupOption    bool         `json:"pickupOption,omitempty"`
	Customer        Customer     `json:"customer"`
	Status          OrderStatus  `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastModified    *time.Time   `json:"lastModified,omitempty"`
}

// Priced reports whether every item carries a unit price, which is when
// the server can recompute totals itself.
func (o *Order) Priced() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if !it.UnitPrice.IsPositive() {
			return false
		}
	}
	return true
}

// Reprice recomputes every lineTotal and the totals from items and fee.
func (o *Order) Reprice(fee decimal.Decimal) {
	subtotal := decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		it.LineTotal = it.Quantity.Mul(it.UnitPrice).Round(2)
		subtotal = subtotal.Add(it.LineTotal)
	}
	o.Totals = OrderTotals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
