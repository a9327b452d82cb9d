package testing

import (
	"reflect"
	"sync"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/event"
)

// MockBus is a synchronous EventBus for tests: subscribers run inline
// in Publish, and every published event is recorded.
type MockBus struct {
	mu          sync.RWMutex
	subscribers map[event.EventType][]bus.EventProcessor
	published   []event.Event
	events      chan event.Event
	closed      bool
}

var _ bus.EventBus = (*MockBus)(nil)

func NewMockBus() *MockBus {
	return &MockBus{
		subscribers: make(map[event.EventType][]bus.EventProcessor),
		events:      make(chan event.Event, 100), // Buffered to avoid blocking
	}
}

func (mb *MockBus) Publish(e event.Event) {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return
	}
	mb.published = append(mb.published, e)
	select {
	case mb.events <- e:
	default:
		// Non-blocking: if the test isn't consuming events, don't block
	}
	processors := append([]bus.EventProcessor(nil), mb.subscribers[e.Type()]...)
	mb.mu.Unlock()

	for _, processor := range processors {
		processor(e)
	}
}

func (mb *MockBus) Subscribe(eventType event.EventType, fn bus.EventProcessor) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.subscribers[eventType] = append(mb.subscribers[eventType], fn)
	return nil
}

func (mb *MockBus) Unsubscribe(eventType event.EventType, fn bus.EventProcessor) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	target := reflect.ValueOf(fn).Pointer()
	processors := mb.subscribers[eventType]
	for i, processor := range processors {
		if reflect.ValueOf(processor).Pointer() == target {
			mb.subscribers[eventType] = append(processors[:i], processors[i+1:]...)
			break
		}
	}
	return nil
}

func (mb *MockBus) Wait() {}

func (mb *MockBus) Close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return
	}
	mb.closed = true
	close(mb.events)
	mb.subscribers = make(map[event.EventType][]bus.EventProcessor)
}

// Events returns the channel that receives published events for test assertions
func (mb *MockBus) Events() <-chan event.Event {
	return mb.events
}

// Published returns a copy of every event published so far, of the given
// types (all types when none are given).
func (mb *MockBus) Published(types ...event.EventType) []event.Event {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	var out []event.Event
	for _, e := range mb.published {
		if len(types) == 0 || containsType(types, e.Type()) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of eventType were published.
func (mb *MockBus) Count(eventType event.EventType) int {
	return len(mb.Published(eventType))
}

// WaitFor blocks until n events of eventType were published or the
// timeout expires, and reports whether the count was reached.
func (mb *MockBus) WaitFor(eventType event.EventType, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if mb.Count(eventType) >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return mb.Count(eventType) >= n
}

func containsType(types []event.EventType, t event.EventType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
