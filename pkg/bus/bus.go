package bus

import (
	"fmt"

	"github.com/alex-ilgayev/socsim/pkg/event"
	evbus "github.com/asaskevich/EventBus"
)

type EventProcessor func(e event.Event)

// EventBus is a thread-safe, publish/subscribe system connecting the
// simulation session to its displays and loggers.
// Using github.com/asaskevich/EventBus behind the scenes.
type EventBus interface {
	Publish(e event.Event)
	Subscribe(eventType event.EventType, fn EventProcessor) error
	Unsubscribe(eventType event.EventType, fn EventProcessor) error
	// Wait blocks until every asynchronous handler has returned.
	Wait()
	Close()
}

type eventBus struct {
	bus evbus.Bus
}

// New creates a new EventBus.
func New() EventBus {
	return &eventBus{
		bus: evbus.New(),
	}
}

func topic(eventType event.EventType) string {
	return fmt.Sprintf("socsim:%s", eventType.String())
}

// Publish hands the event to every subscriber of its type.
// Handlers run in their own goroutines. Publish only waits when the
// same handler is still busy with the previous event.
func (b *eventBus) Publish(e event.Event) {
	b.bus.Publish(topic(e.Type()), e)
}

// Subscribe registers fn for one event type. Deliveries to fn are serialized
// (transactional), so a handler sees events in publish order.
func (b *eventBus) Subscribe(eventType event.EventType, fn EventProcessor) error {
	return b.bus.SubscribeAsync(topic(eventType), fn, true)
}

func (b *eventBus) Unsubscribe(eventType event.EventType, fn EventProcessor) error {
	return b.bus.Unsubscribe(topic(eventType), fn)
}

func (b *eventBus) Wait() {
	b.bus.WaitAsync()
}

// Close drains pending deliveries and drops every subscription.
func (b *eventBus) Close() {
	b.bus.WaitAsync()
	b.bus = evbus.New()
}
