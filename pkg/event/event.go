// Package event provides a small synchronous/async event bus used for
// post-commit hooks: services fire after a durable write and listeners
// (notifications, metrics, the live feed) react without touching
// persistence.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asadazo/asadazo/pkg/logger"
)

// Wildcard listeners receive every event.
const Wildcard = "*"

// Event is one fired occurrence.
type Event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Handler receives an event.
type Handler func(ctx context.Context, e Event)

// Bus holds listeners by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]*listener
	wg       sync.WaitGroup
}

type listener struct{ h Handler }

func New() *Bus {
	return &Bus{handlers: map[string][]*listener{}}
}

// Listen registers a handler for the given event name (or Wildcard) and
// returns a function that removes it.
func (b *Bus) Listen(name string, h Handler) (remove func()) {
	l := &listener{h: h}

	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], l)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.handlers[name]
		for i, x := range ls {
			if x == l {
				b.handlers[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) snapshot(name string) []*listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*listener, 0, len(b.handlers[name])+len(b.handlers[Wildcard]))
	out = append(out, b.handlers[name]...)
	return append(out, b.handlers[Wildcard]...)
}

// Fire dispatches an event synchronously to all registered listeners.
// A panicking listener is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	e := Event{Name: name, Payload: payload, At: time.Now().UTC()}
	for _, l := range b.snapshot(name) {
		call(ctx, l.h, e)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. Listeners get a context detached from the request's
// cancellation so they may outlive it.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	e := Event{Name: name, Payload: payload, At: time.Now().UTC()}
	detached := context.WithoutCancel(ctx)
	for _, l := range b.snapshot(name) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			call(detached, h, e)
		}(l.h)
	}
}

// Wait blocks until every FireAsync listener started so far has returned.
func (b *Bus) Wait() { b.wg.Wait() }

// Flush removes all listeners (useful in tests).
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]*listener{}
}

func call(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", e.Name, "panic", fmt.Sprint(r))
		}
	}()
	h(ctx, e)
}
