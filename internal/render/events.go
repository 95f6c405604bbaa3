package render

import (
	"sync"
	"time"
)

// EventType represents the type of render pipeline event.
type EventType string

const (
	EventRenderStart  EventType = "render_start"
	EventResolveMiss  EventType = "resolve_miss"
	EventFetchMiss    EventType = "fetch_miss"
	EventComposeDone  EventType = "compose_done"
	EventFallback     EventType = "render_fallback"
	EventRenderFailed EventType = "render_failed"
)

// Event represents a pipeline event with associated data.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Category  string
	Data      map[string]interface{}
}

// EventHandler is a function that handles events.
type EventHandler func(Event)

// EventBus manages event publication and subscription. It gives the
// logging layer and tests a decoupled view of pipeline activity.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]EventHandler
	allHandlers []EventHandler
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type.
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types.
func (eb *EventBus) SubscribeAll(handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.allHandlers = append(eb.allHandlers, handler)
}

// Publish sends an event to all registered handlers.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if handlers, ok := eb.handlers[event.Type]; ok {
		for _, handler := range handlers {
			handler(event)
		}
	}
	for _, handler := range eb.allHandlers {
		handler(event)
	}
}

// PublishSimple is a convenience method for publishing events without
// additional data.
func (eb *EventBus) PublishSimple(eventType EventType, category string) {
	eb.Publish(Event{
		Type:     eventType,
		Category: category,
	})
}

// PublishWithData publishes an event with associated data.
func (eb *EventBus) PublishWithData(eventType EventType, category string, data map[string]interface{}) {
	eb.Publish(Event{
		Type:     eventType,
		Category: category,
		Data:     data,
	})
}
