package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishOrder(t *testing.T) {
	var bus Bus[int]
	var got []string

	bus.Subscribe(func(v int) { got = append(got, "a") })
	bus.Subscribe(func(v int) { got = append(got, "b") })
	bus.Subscribe(func(v int) { got = append(got, "c") })

	bus.Publish(1)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var bus Bus[string]
	var got []string

	first := bus.Subscribe(func(v string) { got = append(got, "first:"+v) })
	second := bus.Subscribe(func(v string) { got = append(got, "second:"+v) })
	assert.True(t, first.Valid())
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, bus.Len())

	assert.True(t, bus.Unsubscribe(first))
	assert.False(t, bus.Unsubscribe(first))
	assert.False(t, bus.Unsubscribe(Subscription{}))

	bus.Publish("x")
	assert.Equal(t, []string{"second:x"}, got)
	assert.Equal(t, 1, bus.Len())
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	var bus Bus[int]
	calls := 0

	var self Subscription
	self = bus.Subscribe(func(int) {
		calls++
		bus.Unsubscribe(self)
	})
	bus.Subscribe(func(int) { calls++ })

	bus.Publish(0)
	assert.Equal(t, 2, calls)

	bus.Publish(0)
	assert.Equal(t, 3, calls)
}

func TestPublishNoSubscribers(t *testing.T) {
	var bus Bus[int]
	assert.NotPanics(t, func() { bus.Publish(5) })
}
