package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	StatusPendingReview SubscriptionStatus = "pending review"
	StatusConfirmed     SubscriptionStatus = "confirmed"
	StatusActive        SubscriptionStatus = "active"
	StatusPaused        SubscriptionStatus = "paused"
	StatusCancelled     SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	StatusPendingReview: {StatusConfirmed, StatusActive, StatusPaused, StatusCancelled},
	StatusConfirmed:     {StatusActive, StatusPaused, StatusCancelled},
	StatusActive:        {StatusPaused, StatusCancelled},
	StatusPaused:        {StatusActive, StatusCancelled},
	StatusCancelled:     nil,
}

// CanTransition reports whether a subscription may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Frequency values double as subscription types.
const (
	Weekly    = "weekly"
	Biweekly  = "biweekly"
	Triweekly = "triweekly"
	Monthly   = "monthly"
	Custom    = "custom"
)

// FrequencyDays maps a frequency to the days until the next delivery.
// Anything unrecognised counts as monthly.
func FrequencyDays(frequency string) int {
	switch frequency {
	case Weekly:
		return 7
	case Biweekly:
		return 14
	case Triweekly:
		return 21
	default:
		return 30
	}
}

// SubscriptionProduct snapshots a catalog cut at selection time. Weight is
// in kg, Price in €/kg.
type SubscriptionProduct struct {
	ProductID    string  `json:"productId"    validate:"required"`
	ProductName  string  `json:"productName"`
	Weight       float64 `json:"weight"       validate:"gt=0"`
	Price        float64 `json:"price"        validate:"gte=0"`
	IsSuggestion bool    `json:"isSuggestion,omitempty"`
}

// Subscription is one element of the subscriptions:<userId> array.
type Subscription struct {
	ID               string                `json:"id"`
	UserID           string                `json:"userId"`
	Type             string                `json:"type"`
	Frequency        string                `json:"frequency"`
	TotalWeight      float64               `json:"totalWeight"`
	SelectedProducts []SubscriptionProduct `json:"selectedProducts"`
	Status           SubscriptionStatus    `json:"status"`
	DeliveryAddress  *Address              `json:"deliveryAddress,omitempty"`
	PickupOption     bool                  `json:"pickupOption"`
	Notes            string                `json:"notes,omitempty"`
	NextDelivery     time.Time             `json:"nextDelivery"`
	CreatedAt        time.Time             `json:"createdAt"`
	LastModified     time.Time             `json:"lastModified"`
}

// SumWeight is the sum of the selected products' weights.
func (s *Subscription) SumWeight() float64 {
	var total float64
	for _, p := range s.SelectedProducts {
		total += p.Weight
	}
	return total
}

// TotalPrice is sum(weight * price), rounded to cents.
func (s *Subscription) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.SelectedProducts {
		total = total.Add(LinePrice(p))
	}
	return total.Round(2)
}

// LinePrice is weight * price for one product line.
func LinePrice(p SubscriptionProduct) decimal.Decimal {
	return decimal.NewFromFloat(p.Weight).Mul(decimal.NewFromFloat(p.Price))
}

// IndexEntry is one element of subscriptions_index.
type IndexEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}
