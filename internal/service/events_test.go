package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusFanOut(t *testing.T) {
	bus := NewEventBus()
	a := make(chan Event, 1)
	b := make(chan Event, 1)
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Publish(Event{Type: EventPruneCompleted})

	assert.Equal(t, EventPruneCompleted, (<-a).Type)
	assert.Equal(t, EventPruneCompleted, (<-b).Type)
}

func TestEventBusSkipsSlowSubscribers(t *testing.T) {
	bus := NewEventBus()
	full := make(chan Event)
	bus.Subscribe(full)

	bus.Publish(Event{Type: EventScanCompleted})
	assert.Empty(t, collect(full))
}

func TestNilEventBus(t *testing.T) {
	var bus *EventBus
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: EventScanCompleted})
	})
}

func TestPublishDiscoveryEvent(t *testing.T) {
	bus := NewEventBus()
	ch := make(chan Event, 1)
	bus.Subscribe(ch)

	bus.PublishDiscoveryEvent("scan-completed", 42)

	e := <-ch
	assert.Equal(t, EventScanCompleted, e.Type)
	assert.Equal(t, 42, e.Payload)
}
