// Package routes is the storefront's route table.
package routes

import (
	"net/http"

	"github.com/asadazo/asadazo/app/controllers"
	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/pkg/ctx"
	"github.com/asadazo/asadazo/pkg/rbac"
	"github.com/asadazo/asadazo/pkg/router"
)

// Handlers are the controllers the route table dispatches to.
type Handlers struct {
	Orders        *controllers.OrderController
	Subscriptions *controllers.SubscriptionController
	Auth          *controllers.AuthController
	Site          *controllers.SiteController
	Live          *controllers.LiveController
	GraphQL       http.HandlerFunc
}

// RegisterAPI mounts every endpoint at the root and again under /api, the
// prefix the storefront calls.
func RegisterAPI(r *router.Router, h Handlers) {
	mount(r.Group("/"), "", h)
	mount(r.Group("/api"), "api.", h)
}

func mount(g *router.Group, prefix string, h Handlers) {
	g.Get("/orders", prefix+"orders.index", ctx.Wrap(h.Orders.Index))
	g.Post("/orders", prefix+"orders.store", ctx.Wrap(h.Orders.Store))
	g.Put("/orders", prefix+"orders.update", ctx.Wrap(h.Orders.Update))

	g.Get("/subscriptions", prefix+"subscriptions.index", ctx.Wrap(h.Subscriptions.Index))
	g.Post("/subscriptions", prefix+"subscriptions.store", ctx.Wrap(h.Subscriptions.Store))
	g.Put("/subscriptions", prefix+"subscriptions.update", ctx.Wrap(h.Subscriptions.Update))
	g.Delete("/subscriptions", prefix+"subscriptions.destroy", ctx.Wrap(h.Subscriptions.Destroy))
	g.Get("/subscription-suggestions", prefix+"subscriptions.suggestions", ctx.Wrap(h.Subscriptions.Suggestions))

	g.Post("/register", prefix+"auth.register", ctx.Wrap(h.Auth.Register))
	g.Post("/login", prefix+"auth.login", ctx.Wrap(h.Auth.Login))
	g.Post("/logout", prefix+"auth.logout", ctx.Wrap(h.Auth.Logout))
	g.Get("/me", prefix+"auth.me", ctx.Wrap(h.Auth.Me))
	g.Post("/admin-promote", prefix+"auth.promote", ctx.Wrap(h.Auth.Promote), rbac.AdminOrKey(config.AdminAPIKey))

	g.Post("/send-email", prefix+"site.contact", ctx.Wrap(h.Site.SendEmail))
	g.Get("/kv-health", prefix+"site.kv_health", ctx.Wrap(h.Site.KVHealth))

	if h.GraphQL != nil {
		g.Post("/graphql", prefix+"graphql", h.GraphQL)
	}
	if h.Live != nil {
		g.Get("/admin/live", prefix+"admin.live", ctx.Wrap(h.Live.Stream), rbac.HasRole("admin"))
		g.Get("/admin/events", prefix+"admin.events", ctx.Wrap(h.Live.Events), rbac.HasRole("admin"))
	}
}
