// Package input turns window events into explicit callbacks. The window
// layer translates platform events into Event values and hands them to a
// Dispatcher; consumers register handlers instead of polling each frame.
package input

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/event"
)

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Key is a keyboard key.
type Key int

// Keys the viewer binds.
const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyR
	KeyF
	Key1
	Key2
	Key3
	Key4
	Key5
	KeyEscape
	KeySpace
	KeyLeftShift
	numKeys
)

// Mouse buttons.
const (
	ButtonLeft   uint8 = 1
	ButtonMiddle uint8 = 2
	ButtonRight  uint8 = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // mouse motion or wheel delta
	DeltaY int
	Button uint8
}

// Handler receives dispatched events.
type Handler func(Event)

// Dispatcher fans events out to registered handlers and tracks held keys
// and buttons.
type Dispatcher struct {
	handlers [EventMouseWheel + 1]event.Bus[Event]
	keys     [numKeys]bool
	buttons  [8]bool
	mouseX   int
	mouseY   int
	quit     bool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// On registers fn for events of type t.
func (d *Dispatcher) On(t EventType, fn Handler) event.Subscription {
	return d.handlers[t].Subscribe(fn)
}

// OnMouseDown registers fn for mouse button presses.
func (d *Dispatcher) OnMouseDown(fn Handler) event.Subscription {
	return d.On(EventMouseDown, fn)
}

// OnMouseUp registers fn for mouse button releases.
func (d *Dispatcher) OnMouseUp(fn Handler) event.Subscription {
	return d.On(EventMouseUp, fn)
}

// OnMouseMove registers fn for mouse motion.
func (d *Dispatcher) OnMouseMove(fn Handler) event.Subscription {
	return d.On(EventMouseMove, fn)
}

// OnMouseWheel registers fn for wheel scrolling.
func (d *Dispatcher) OnMouseWheel(fn Handler) event.Subscription {
	return d.On(EventMouseWheel, fn)
}

// OnKeyDown registers fn for key presses.
func (d *Dispatcher) OnKeyDown(fn Handler) event.Subscription {
	return d.On(EventKeyDown, fn)
}

// OnResize registers fn for window resizes.
func (d *Dispatcher) OnResize(fn Handler) event.Subscription {
	return d.On(EventWindowResize, fn)
}

// Off removes a handler from whichever event type it was registered for.
func (d *Dispatcher) Off(sub event.Subscription) bool {
	for i := range d.handlers {
		if d.handlers[i].Unsubscribe(sub) {
			return true
		}
	}
	return false
}

// Dispatch updates held state and delivers e to its handlers in
// registration order.
func (d *Dispatcher) Dispatch(e Event) {
	switch e.Type {
	case EventNone:
		return
	case EventQuit:
		d.quit = true
	case EventKeyDown, EventKeyUp:
		if e.Key > KeyUnknown && e.Key < numKeys {
			d.keys[e.Key] = e.Type == EventKeyDown
		}
	case EventMouseDown, EventMouseUp:
		if int(e.Button) < len(d.buttons) {
			d.buttons[e.Button] = e.Type == EventMouseDown
		}
		d.mouseX, d.mouseY = e.MouseX, e.MouseY
	case EventMouseMove:
		d.mouseX, d.mouseY = e.MouseX, e.MouseY
	}
	if e.Type < 0 || int(e.Type) >= len(d.handlers) {
		return
	}
	d.handlers[e.Type].Publish(e)
}

// KeyDown reports whether k is held.
func (d *Dispatcher) KeyDown(k Key) bool {
	return k > KeyUnknown && k < numKeys && d.keys[k]
}

// ButtonDown reports whether mouse button b is held.
func (d *Dispatcher) ButtonDown(b uint8) bool {
	return int(b) < len(d.buttons) && d.buttons[b]
}

// Mouse returns the last known cursor position.
func (d *Dispatcher) Mouse() (x, y int) {
	return d.mouseX, d.mouseY
}

// QuitRequested reports whether a quit event has been dispatched.
func (d *Dispatcher) QuitRequested() bool {
	return d.quit
}
