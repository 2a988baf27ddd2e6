package controllers

import (
	"net/http"

	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/ctx"
	"github.com/asadazo/asadazo/pkg/logger"
)

// SiteController serves the contact form and the store health probe.
type SiteController struct {
	contact *services.ContactService
	health  *services.HealthService
}

func NewSiteController(contact *services.ContactService, health *services.HealthService) *SiteController {
	return &SiteController{contact: contact, health: health}
}

// SendEmail POST /send-email relays any JSON object to the operator.
func (sc *SiteController) SendEmail(c *ctx.Context) {
	form := map[string]any{}
	if !c.BindJSON(&form) {
		return
	}
	if err := sc.contact.Send(c.Context(), form); err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"ok": true})
}

// KVHealth GET /kv-health
func (sc *SiteController) KVHealth(c *ctx.Context) {
	value, err := sc.health.Probe(c.Context())
	if err != nil {
		logger.WithCtx(c.Context()).Error("kv health failed", "error", err)
		c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	c.OK(map[string]any{"ok": true, "value": value})
}
