// Package kernel assembles the storefront: store, repositories, services,
// notification pipeline and the HTTP handler with its global middleware.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/asadazo/asadazo/app/controllers"
	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/app/routes"
	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/kv"
	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/notification"
	"github.com/asadazo/asadazo/pkg/router"
	"github.com/asadazo/asadazo/pkg/schedule"
	"github.com/asadazo/asadazo/pkg/storage"
	"github.com/asadazo/asadazo/pkg/workerpool"
	"github.com/asadazo/asadazo/pkg/ws"
)

// Options override what Build would otherwise read from config.
type Options struct {
	Store  kv.Store    // required
	Mailer mail.Mailer // nil: SMTP from MAIL_*

	// Inline runs operator notifications on the calling goroutine instead
	// of the worker pool.
	Inline bool
}

// App is the wired application.
type App struct {
	Store    kv.Store
	Bus      *event.Bus
	Pool     *workerpool.Pool
	Notifier *notification.Notifier
	Hub      *ws.Hub
	Schedule *schedule.Scheduler

	Orders        *services.OrderService
	Subscriptions *services.SubscriptionService
	Suggestions   *services.SuggestionService
	Auth          *services.AuthService
	Contact       *services.ContactService
	Health        *services.HealthService
	Export        *services.ExportService

	Router *router.Router
}

// Build wires every component on top of opts.Store.
func Build(opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("kernel: a store is required")
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.NewSMTPMailer()
	}

	pricing, err := models.ParseDeliveryPricing(
		config.DeliveryInsideRingFee(),
		config.DeliveryOutsideRingFee(),
		config.DeliveryFreeThreshold(),
	)
	if err != nil {
		return nil, fmt.Errorf("kernel: delivery pricing: %w", err)
	}

	a := &App{
		Store: opts.Store,
		Bus:   event.New(),
		Hub:   ws.NewHub(),
	}
	if !opts.Inline {
		a.Pool = workerpool.New(config.NotifyWorkers())
	}
	a.Notifier = notification.New(notification.Options{
		Mailer:     mailer,
		Pool:       a.Pool,
		Operator:   config.OperatorEmail(),
		WebhookURL: config.NotifyWebhookURL(),

		WebhookAttempts: config.NotifyWebhookAttempts(),
	})
	services.RegisterListeners(a.Bus, a.Notifier)

	locking := config.OptimisticLocking()
	orderRepo := repositories.NewOrderRepository(a.Store, locking)

	a.Subscriptions = services.NewSubscriptionService(
		repositories.NewSubscriptionRepository(a.Store, locking),
		repositories.NewSubscriptionIndex(a.Store, locking),
		a.Bus,
	)
	a.Subscriptions.EnforceTransitions = config.EnforceTransitions()
	a.Subscriptions.ReconcileWeight = config.ReconcileTotalWeight()

	a.Orders = services.NewOrderService(orderRepo, a.Bus, a.Notifier, pricing)
	a.Suggestions = services.NewSuggestionService()
	a.Auth = services.NewAuthService(repositories.NewUserRepository(a.Store))
	a.Contact = services.NewContactService(a.Notifier)
	a.Health = services.NewHealthService(a.Store)
	a.Export = services.NewExportService(a.Subscriptions, orderRepo)

	gql, err := controllers.NewGraphQLHandler(a.Suggestions, pricing)
	if err != nil {
		return nil, err
	}

	a.Router = newRouter()
	routes.RegisterAPI(a.Router, routes.Handlers{
		Orders:        controllers.NewOrderController(a.Orders),
		Subscriptions: controllers.NewSubscriptionController(a.Subscriptions, a.Suggestions),
		Auth:          controllers.NewAuthController(a.Auth),
		Site:          controllers.NewSiteController(a.Contact, a.Health),
		Live:          controllers.NewLiveController(a.Hub, a.Bus),
		GraphQL:       gql,
	})

	a.Schedule = a.jobs()
	return a, nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler { return a.Router.Handler() }

// Start runs the live hub and the scheduled jobs until ctx ends.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
	a.Schedule.Start(ctx)
}

// Close drains background work and releases the store. Call after the
// context passed to Start is done.
func (a *App) Close() error {
	a.Schedule.Wait()
	a.Bus.Wait()
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	return a.Store.Close()
}

func (a *App) jobs() *schedule.Scheduler {
	s := schedule.New()

	if every := config.HealthProbeInterval(); every > 0 {
		s.Every(every).Name("kv:health").WithoutOverlapping().Run(func(ctx context.Context) error {
			_, err := a.Health.Probe(ctx)
			return err
		})
	}

	if every := config.ExportInterval(); every > 0 {
		s.Every(every).Name("export").WithoutOverlapping().Run(func(ctx context.Context) error {
			disk, err := storage.Open(ctx, config.StorageDefault())
			if err != nil {
				return err
			}
			_, err = a.Export.Write(ctx, disk, "")
			return err
		})
	}

	return s
}
