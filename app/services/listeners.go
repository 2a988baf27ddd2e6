package services

import (
	"context"
	"strconv"

	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/metrics"
	"github.com/asadazo/asadazo/pkg/notification"
)

// RegisterListeners wires the post-commit hooks: operator notifications and
// domain counters. Notifications are dispatched best-effort.
func RegisterListeners(bus *event.Bus, notifier *notification.Notifier) {
	bus.Listen(EventSubscriptionCreated, func(ctx context.Context, e event.Event) {
		p, ok := e.Payload.(SubscriptionCreated)
		if !ok {
			return
		}
		metrics.SubscriptionsCreated.Inc()
		notifier.Dispatch(ctx, NewSubscriptionMail{Subscription: p.Subscription, CustomerEmail: p.CustomerEmail},
			"subscription_id", p.Subscription.ID)
	})

	bus.Listen(EventSubscriptionStatusChanged, func(ctx context.Context, e event.Event) {
		p, ok := e.Payload.(SubscriptionStatusChanged)
		if !ok {
			return
		}
		metrics.SubscriptionStatusChanges.WithLabelValues(string(p.From), string(p.To)).Inc()
		notifier.Dispatch(ctx, StatusChangedMail{Subscription: p.Subscription, From: p.From, To: p.To},
			"subscription_id", p.Subscription.ID)
	})

	bus.Listen(EventOrderCreated, func(ctx context.Context, e event.Event) {
		p, ok := e.Payload.(OrderCreated)
		if !ok {
			return
		}
		metrics.OrdersCreated.WithLabelValues(strconv.FormatBool(p.Persisted)).Inc()
		// Anonymous checkouts already mailed synchronously.
		if p.Persisted {
			notifier.Dispatch(ctx, OrderMail{Order: p.Order}, "order_id", p.Order.ID)
		}
	})
}
