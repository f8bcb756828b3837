package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusNotRunning is returned by Publish before Start or after Stop
var ErrBusNotRunning = errors.New("event bus is not running")

// FailureHook observes handler failures, including recovered panics
type FailureHook func(ctx context.Context, event shared.DomainEvent, err error)

// InMemoryEventBus dispatches events synchronously to subscribed handlers.
// A failing handler never affects the publisher or the other handlers.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	onFailure FailureHook
	running   atomic.Bool
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithFailureHook registers a callback invoked after a handler fails
func WithFailureHook(hook FailureHook) BusOption {
	return func(b *InMemoryEventBus) {
		b.onFailure = hook
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers each event to its handlers in subscription order.
// Nothing is dispatched while the bus is not running.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatchToHandler(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_type", event.AggregateType()),
					zap.String("aggregate_id", event.AggregateID()),
					zap.Error(err),
				)
				if b.onFailure != nil {
					b.onFailure(ctx, event, err)
				}
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types.
// Without explicit types the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop marks the bus as stopped
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// Running reports whether Start was called without a matching Stop
func (b *InMemoryEventBus) Running() bool {
	return b.running.Load()
}

// dispatchToHandler converts a handler panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
