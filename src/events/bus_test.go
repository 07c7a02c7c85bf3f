package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus[int]()
	var order []string
	bus.Subscribe(func(v int) { order = append(order, "first") })
	bus.Subscribe(func(v int) { order = append(order, "second") })
	bus.Subscribe(func(v int) { order = append(order, "third") })

	bus.Publish(1)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPanickingListenerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus[string]()
	var got []string
	bus.Subscribe(func(v string) { got = append(got, "a:"+v) })
	bus.Subscribe(func(v string) { panic("listener blew up") })
	bus.Subscribe(func(v string) { got = append(got, "c:"+v) })

	bus.Publish("payload")

	assert.Equal(t, []string{"a:payload", "c:payload"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus[int]()
	count := 0
	unsub := bus.Subscribe(func(v int) { count++ })

	bus.Publish(1)
	unsub()
	bus.Publish(2)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.Len())
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	bus := NewBus[int]()
	bus.Publish(42)

	seen := false
	bus.Subscribe(func(v int) { seen = true })

	assert.False(t, seen)
}
