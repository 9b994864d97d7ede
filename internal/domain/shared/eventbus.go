package shared

import "context"

// EventHandler reacts to published events. Handlers run after the business
// operation committed, so a failing handler never undoes it.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the events the handler wants. Empty means all of them.
	EventTypes() []string
}

// EventPublisher is what application services depend on
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is the process-wide publisher that handlers subscribe to
type EventBus interface {
	EventPublisher
	// Subscribe registers handler for eventTypes, defaulting to handler.EventTypes()
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishPending publishes the aggregate's recorded events and clears them.
// A nil publisher drops the events.
func PublishPending(ctx context.Context, publisher EventPublisher, root AggregateRoot) error {
	events := root.GetDomainEvents()
	root.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return nil
	}
	return publisher.Publish(ctx, events...)
}
