package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/asadazo/asadazo/pkg/ctx"
	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/logger"
	"github.com/asadazo/asadazo/pkg/sse"
	"github.com/asadazo/asadazo/pkg/ws"
)

// LiveController streams every domain event to connected admins, over a
// websocket or as Server-Sent Events.
type LiveController struct {
	hub *ws.Hub
	bus *event.Bus

	// Heartbeat is the keepalive interval on event streams.
	Heartbeat time.Duration
}

// NewLiveController subscribes hub to all events on bus.
func NewLiveController(hub *ws.Hub, bus *event.Bus) *LiveController {
	bus.Listen(event.Wildcard, func(ctx context.Context, e event.Event) {
		if hub.ClientCount() == 0 {
			return
		}
		raw, err := json.Marshal(e)
		if err != nil {
			logger.WithCtx(ctx).Warn("live: encode event", "event", e.Name, "error", err)
			return
		}
		if !hub.Publish(raw) {
			logger.WithCtx(ctx).Warn("live: feed saturated, event dropped", "event", e.Name)
		}
	})
	return &LiveController{hub: hub, bus: bus, Heartbeat: 25 * time.Second}
}

// Stream GET /admin/live upgrades to a websocket.
func (lc *LiveController) Stream(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, lc.hub) //nolint:errcheck
}

// Events GET /admin/events holds the request open and writes one SSE frame
// per event. A client that falls behind loses events rather than stalling
// the request that fired them.
func (lc *LiveController) Events(c *ctx.Context) {
	feed := make(chan event.Event, 64)
	remove := lc.bus.Listen(event.Wildcard, func(_ context.Context, e event.Event) {
		select {
		case feed <- e:
		default:
		}
	})
	defer remove()

	stream, err := sse.New(c.W, c.R)
	if err != nil {
		logger.WithCtx(c.Context()).Warn("live: event stream", "error", err)
		return
	}

	ticker := time.NewTicker(lc.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Context().Done():
			return
		case e := <-feed:
			raw, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if stream.Send(e.Name, raw) != nil {
				return
			}
		case <-ticker.C:
			if stream.Comment("keepalive") != nil {
				return
			}
		}
	}
}
