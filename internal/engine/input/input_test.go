package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrder(t *testing.T) {
	d := NewDispatcher()

	var got []string
	d.OnMouseDown(func(e Event) { got = append(got, "a") })
	d.OnMouseDown(func(e Event) { got = append(got, "b") })
	d.OnKeyDown(func(e Event) { got = append(got, "key") })

	d.Dispatch(Event{Type: EventMouseDown, Button: ButtonLeft, MouseX: 10, MouseY: 20})
	assert.Equal(t, []string{"a", "b"}, got)

	x, y := d.Mouse()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)
	assert.True(t, d.ButtonDown(ButtonLeft))

	d.Dispatch(Event{Type: EventMouseUp, Button: ButtonLeft})
	assert.False(t, d.ButtonDown(ButtonLeft))
}

func TestOff(t *testing.T) {
	d := NewDispatcher()

	count := 0
	sub := d.OnMouseMove(func(Event) { count++ })
	d.Dispatch(Event{Type: EventMouseMove})
	assert.True(t, d.Off(sub))
	assert.False(t, d.Off(sub))
	d.Dispatch(Event{Type: EventMouseMove})

	assert.Equal(t, 1, count)
}

func TestHeldKeys(t *testing.T) {
	d := NewDispatcher()

	d.Dispatch(Event{Type: EventKeyDown, Key: KeyW})
	assert.True(t, d.KeyDown(KeyW))
	assert.False(t, d.KeyDown(KeyS))

	d.Dispatch(Event{Type: EventKeyUp, Key: KeyW})
	assert.False(t, d.KeyDown(KeyW))

	// Unknown keys are delivered but not tracked.
	var seen bool
	d.OnKeyDown(func(e Event) { seen = e.Key == KeyUnknown })
	d.Dispatch(Event{Type: EventKeyDown, Key: KeyUnknown})
	assert.True(t, seen)
	assert.False(t, d.KeyDown(KeyUnknown))
}

func TestQuit(t *testing.T) {
	d := NewDispatcher()
	assert.False(t, d.QuitRequested())

	quit := 0
	d.On(EventQuit, func(Event) { quit++ })
	d.Dispatch(Event{Type: EventQuit})

	assert.True(t, d.QuitRequested())
	assert.Equal(t, 1, quit)
}

func TestDispatchIgnoresNone(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.On(EventNone, func(Event) { called = true })
	d.Dispatch(Event{})
	d.Dispatch(Event{Type: EventType(99)})
	assert.False(t, called)
}
