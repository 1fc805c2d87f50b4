// Package events fans contract domain events out to side-effect handlers.
// Handler failures are isolated: they are logged with the handler's name and
// the event type, and never reach the caller or block sibling handlers. The
// triggering state change is already durable by the time publishing starts.
package events

import (
	"context"
	"sync"

	"github.com/gartstein/contracto/internal/contract/domain"
	"go.uber.org/zap"
)

// Handler consumes one domain event. Handle errors are logged by the
// publisher, not propagated.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event domain.Event) error
}

// Publisher is a handler registry with synchronous concurrent fan-out:
// Publish returns once every matched handler has finished. Registration is
// expected before steady-state traffic, but the registry is lock-guarded so
// a late Register cannot race a Publish.
type Publisher struct {
	mu       sync.RWMutex
	handlers map[string]map[Handler]struct{}
	global   map[Handler]struct{}
	logger   *zap.Logger
}

// NewPublisher constructs an empty publisher.
func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{
		handlers: make(map[string]map[Handler]struct{}),
		global:   make(map[Handler]struct{}),
		logger:   logger.Named("event_publisher"),
	}
}

// Register subscribes a handler to one event type.
func (p *Publisher) Register(eventType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.handlers[eventType]
	if !ok {
		set = make(map[Handler]struct{})
		p.handlers[eventType] = set
	}
	set[h] = struct{}{}
}

// RegisterGlobal subscribes a handler to every event type.
func (p *Publisher) RegisterGlobal(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.global[h] = struct{}{}
}

// Unregister removes a handler's subscription to one event type.
func (p *Publisher) Unregister(eventType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handlers[eventType], h)
}

// HandlersFor returns the union of exact-type and global handlers.
func (p *Publisher) HandlersFor(eventType string) []Handler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Handler, 0, len(p.handlers[eventType])+len(p.global))
	for h := range p.handlers[eventType] {
		out = append(out, h)
	}
	for h := range p.global {
		out = append(out, h)
	}
	return out
}

// ClearHandlers empties the registry.
func (p *Publisher) ClearHandlers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = make(map[string]map[Handler]struct{})
	p.global = make(map[Handler]struct{})
}

// HandlerCount returns the number of registrations, global ones included.
func (p *Publisher) HandlerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := len(p.global)
	for _, set := range p.handlers {
		n += len(set)
	}
	return n
}

// Publish invokes every matched handler concurrently and waits for all of
// them. With no matched handlers it returns immediately. Handlers run in no
// defined order relative to each other.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) {
	matched := p.HandlersFor(event.EventType())
	if len(matched) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, h := range matched {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			p.invoke(ctx, h, event)
		}(h)
	}
	wg.Wait()
}

// invoke runs one handler, containing both errors and panics.
func (p *Publisher) invoke(ctx context.Context, h Handler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panicked",
				zap.String("handler", h.Name()),
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h.Handle(ctx, event); err != nil {
		p.logger.Error("event handler failed",
			zap.Error(err),
			zap.String("handler", h.Name()),
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
	}
}
