package bus

import "time"

// EventBus is a synchronous, in-process pub/sub bus carrying scene change
// notifications.
//
// - Type-based fan-out: handlers subscribe by Event.Type.
// - Wildcard: handlers subscribed to AllEvents receive every event.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - All methods are safe for concurrent use.
type EventBus interface {
	Publish(event Event) error
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for eventType. AllEvents subscribes to
	// every event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	Metrics() Metrics
}

// AllEvents is the wildcard event type.
const AllEvents = "*"

// Event is an immutable notification. Source is the id of the publisher.
type Event struct {
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Time   time.Time      `json:"time"`
	Data   map[string]any `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, source string, data map[string]any) Event {
	return Event{Type: typ, Source: source, Time: time.Now(), Data: data}
}

type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Metrics is a snapshot of delivery counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Subscribers       uint64
}
