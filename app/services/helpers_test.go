package services_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/kv"
	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/notification"
)

const operator = "ops@asadazo.test"

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// clock advances one minute per reading so lastModified visibly moves.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

type harness struct {
	store  kv.Store
	bus    *event.Bus
	mailer *mail.Recorder
	clock  *clock

	subs   *services.SubscriptionService
	orders *services.OrderService
	users  *services.AuthService
	orderR *repositories.OrderRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:  kv.NewMemoryStore(),
		bus:    event.New(),
		mailer: &mail.Recorder{},
		clock:  &clock{t: epoch},
	}
	notifier := notification.New(notification.Options{Mailer: h.mailer, Operator: operator})
	services.RegisterListeners(h.bus, notifier)

	h.subs = services.NewSubscriptionService(
		repositories.NewSubscriptionRepository(h.store, true),
		repositories.NewSubscriptionIndex(h.store, true),
		h.bus,
	)
	h.subs.Now = h.clock.Now
	n := 0
	h.subs.NewID = func() string { n++; return fmt.Sprintf("sub_test_%d", n) }

	h.orderR = repositories.NewOrderRepository(h.store, true)
	h.orders = services.NewOrderService(h.orderR, h.bus, notifier, models.DefaultDeliveryPricing())
	h.orders.Now = h.clock.Now

	h.users = services.NewAuthService(repositories.NewUserRepository(h.store))
	return h
}

func claims(id, role string) *auth.Claims {
	return &auth.Claims{
		Email:            id + "@example.com",
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	}
}

func raw(t *testing.T, fields map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		out[k] = b
	}
	return out
}

func vacioInput(frequency string) services.SubscriptionInput {
	return services.SubscriptionInput{
		Type:      models.Weekly,
		Frequency: frequency,
		SelectedProducts: []models.SubscriptionProduct{
			{ProductID: "vacio", ProductName: "Vacío", Weight: 2, Price: 22},
		},
		PickupOption: true,
	}
}
