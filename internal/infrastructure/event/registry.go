package event

import (
	"slices"
	"sync"

	"github.com/fintermediary/backoffice/internal/domain/shared"
)

// subscription is one handler and the event types it asked for.
// An empty types list subscribes to every event.
type subscription struct {
	handler shared.EventHandler
	types   []string
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// HandlerRegistry keeps subscriptions in the order they were made, so
// handlers for an event always run in registration order
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every event when none are
// given. Registering the same handler again merges the event types.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.subs {
		if r.subs[i].handler != handler {
			continue
		}
		switch {
		case len(eventTypes) == 0:
			r.subs[i].types = nil
		case len(r.subs[i].types) > 0:
			for _, t := range eventTypes {
				if !slices.Contains(r.subs[i].types, t) {
					r.subs[i].types = append(r.subs[i].types, t)
				}
			}
		}
		return
	}
	r.subs = append(r.subs, subscription{handler: handler, types: slices.Clone(eventTypes)})
}

// Unregister removes every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == handler })
}

// GetHandlers returns the handlers subscribed to eventType
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []shared.EventHandler
	for _, s := range r.subs {
		if s.matches(eventType) {
			result = append(result, s.handler)
		}
	}
	return result
}

// EventTypes returns the sorted event types with at least one type-specific subscriber
func (r *HandlerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for _, s := range r.subs {
		for _, t := range s.types {
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	slices.Sort(types)
	return types
}

// Len returns the number of subscribed handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
