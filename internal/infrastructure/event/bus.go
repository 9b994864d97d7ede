package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Before Start and after Stop events are dispatched synchronously on the
// publisher's goroutine. While running they are queued and delivered by a
// fixed pool of workers; a full queue falls back to synchronous delivery.
type InMemoryEventBus struct {
	registry   *HandlerRegistry
	logger     *zap.Logger
	workers    int
	bufferSize int
	observer   DeliveryObserver

	mu      sync.RWMutex
	queue   chan envelope
	running bool
	wg      sync.WaitGroup
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// DeliveryObserver records the outcome of each handler invocation.
// *metrics.Collector satisfies it.
type DeliveryObserver interface {
	ObserveEvent(eventType string, err error)
}

// BusOption configures the bus
type BusOption func(*InMemoryEventBus)

// WithWorkers sets the number of delivery workers
func WithWorkers(n int) BusOption {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithBufferSize sets the queue capacity
func WithBufferSize(n int) BusOption {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithDeliveryObserver reports every handler outcome to o
func WithDeliveryObserver(o DeliveryObserver) BusOption {
	return func(b *InMemoryEventBus) {
		b.observer = o
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:   NewHandlerRegistry(),
		logger:     logger,
		workers:    4,
		bufferSize: 256,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands the events to their handlers. Handler failures are logged and never
// returned, so a failing notification cannot roll back the business operation.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	// Handlers outlive the request that produced the event
	detached := context.WithoutCancel(ctx)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		if b.running {
			select {
			case b.queue <- envelope{ctx: detached, event: event}:
				continue
			default:
				b.logger.Warn("event queue full, dispatching synchronously",
					zap.String("event_type", event.EventType()))
			}
		}
		b.dispatch(detached, event)
	}
	return nil
}

// Subscribe registers a handler for specific event types
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

// Start launches the delivery workers
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	b.queue = make(chan envelope, b.bufferSize)
	b.running = true
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("handlers", b.registry.Len()),
		zap.Strings("event_types", b.registry.EventTypes()),
	)
	return nil
}

// Stop closes the queue and waits for queued events to drain, or for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with events pending")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		err := b.dispatchToHandler(ctx, handler, event)
		if b.observer != nil {
			b.observer.ObserveEvent(event.EventType(), err)
		}
		if err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler recovers handler panics so one handler cannot take down a worker
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
