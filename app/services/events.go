package services

import (
	"github.com/asadazo/asadazo/app/models"
)

// Post-commit events. They fire only after the owning bucket write succeeds.
const (
	EventOrderCreated              = "order.created"
	EventOrderUpdated              = "order.updated"
	EventSubscriptionCreated       = "subscription.created"
	EventSubscriptionUpdated       = "subscription.updated"
	EventSubscriptionStatusChanged = "subscription.status_changed"
)

type OrderCreated struct {
	Order     models.Order `json:"order"`
	Persisted bool         `json:"persisted"`
}

type OrderUpdated struct {
	Order models.Order `json:"order"`
	By    string       `json:"by"`
}

type SubscriptionCreated struct {
	Subscription  models.Subscription `json:"subscription"`
	CustomerEmail string              `json:"customerEmail"`
}

type SubscriptionUpdated struct {
	Subscription models.Subscription `json:"subscription"`
	By           string              `json:"by"`
}

type SubscriptionStatusChanged struct {
	Subscription models.Subscription       `json:"subscription"`
	From         models.SubscriptionStatus `json:"from"`
	To           models.SubscriptionStatus `json:"to"`
	By           string                    `json:"by"`
}
