package controllers

import (
	"encoding/json"

	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/ctx"
)

type SubscriptionController struct {
	subs        *services.SubscriptionService
	suggestions *services.SuggestionService
}

func NewSubscriptionController(subs *services.SubscriptionService, suggestions *services.SuggestionService) *SubscriptionController {
	return &SubscriptionController{subs: subs, suggestions: suggestions}
}

type subscriptionUpdateRequest struct {
	SubscriptionID string                     `json:"subscriptionId"`
	Updates        map[string]json.RawMessage `json:"updates"`
	AdminOverride  bool                       `json:"adminOverride"`
	TargetUserID   string                     `json:"targetUserId"`
}

// Index GET /subscriptions[?all=true]
func (sc *SubscriptionController) Index(c *ctx.Context) {
	subs, err := sc.subs.List(c.Context(), c.Claims(), c.Query("all") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"subscriptions": subs})
}

// Store POST /subscriptions
func (sc *SubscriptionController) Store(c *ctx.Context) {
	claims := c.Claims()
	if claims == nil {
		c.Unauthorized("Unauthorized. Please log in to create a subscription.")
		return
	}
	var in services.SubscriptionInput
	if !c.BindJSON(&in) {
		return
	}
	sub, err := sc.subs.Create(c.Context(), claims, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{
		"success":      true,
		"subscription": sub,
		"message":      "Subscription created successfully and sent for review",
	})
}

// Update PUT /subscriptions
func (sc *SubscriptionController) Update(c *ctx.Context) {
	claims := c.Claims()
	if claims == nil {
		c.Unauthorized()
		return
	}
	var req subscriptionUpdateRequest
	if !c.BindJSON(&req) {
		return
	}
	sub, err := sc.subs.Update(c.Context(), claims, services.UpdateInput{
		ID:            req.SubscriptionID,
		Updates:       req.Updates,
		AdminOverride: req.AdminOverride,
		TargetUserID:  req.TargetUserID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{
		"success":      true,
		"subscription": sub,
		"message":      "Subscription updated successfully",
	})
}

// Destroy DELETE /subscriptions?id=... cancels; the record stays.
func (sc *SubscriptionController) Destroy(c *ctx.Context) {
	if err := sc.subs.Cancel(c.Context(), c.Claims(), c.Query("id")); err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{
		"success": true,
		"message": "Subscription cancelled successfully",
	})
}

// Suggestions GET /subscription-suggestions?type=weekly
func (sc *SubscriptionController) Suggestions(c *ctx.Context) {
	c.OK(sc.suggestions.Suggest(c.DefaultQuery("type", "weekly")))
}
