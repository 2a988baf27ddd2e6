package controllers

import (
	"encoding/json"

	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type orderUpdateRequest struct {
	OrderID       string                     `json:"orderId"`
	Updates       map[string]json.RawMessage `json:"updates"`
	AdminOverride bool                       `json:"adminOverride"`
	TargetUserID  string                     `json:"targetUserId"`
}

// Index GET /orders
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context(), c.Claims())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"orders": orders})
}

// Store POST /orders. Anonymous checkouts are mailed, not stored.
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, persisted, err := oc.orders.Create(c.Context(), c.Claims(), in)
	if err != nil {
		fail(c, err)
		return
	}
	if !persisted {
		c.OK(map[string]any{"ok": true})
		return
	}
	c.OK(map[string]any{"ok": true, "order": order})
}

// Update PUT /orders
func (oc *OrderController) Update(c *ctx.Context) {
	claims := c.Claims()
	if claims == nil {
		c.Unauthorized("Not authenticated")
		return
	}
	var req orderUpdateRequest
	if !c.BindJSON(&req) {
		return
	}
	order, err := oc.orders.Update(c.Context(), claims, services.UpdateInput{
		ID:            req.OrderID,
		Updates:       req.Updates,
		AdminOverride: req.AdminOverride,
		TargetUserID:  req.TargetUserID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"ok": true, "order": order})
}
