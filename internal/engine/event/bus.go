// Package event provides a synchronous observer list.
package event

import (
	"github.com/google/uuid"
)

// Subscription identifies a registered handler.
type Subscription struct {
	id uuid.UUID
}

// String returns the handle id.
func (s Subscription) String() string {
	return s.id.String()
}

// Valid reports whether the subscription came from Subscribe.
func (s Subscription) Valid() bool {
	return s.id != uuid.Nil
}

type handler[T any] struct {
	sub Subscription
	fn  func(T)
}

// Bus fans a value out to every subscriber, synchronously and in
// subscription order. A Bus is owned by a single goroutine.
type Bus[T any] struct {
	handlers []handler[T]
}

// Subscribe registers fn and returns a handle for Unsubscribe.
func (b *Bus[T]) Subscribe(fn func(T)) Subscription {
	sub := Subscription{id: uuid.New()}
	b.handlers = append(b.handlers, handler[T]{sub: sub, fn: fn})
	return sub
}

// Unsubscribe removes the handler registered under sub. It returns false if
// the handle is unknown.
func (b *Bus[T]) Unsubscribe(sub Subscription) bool {
	for i, h := range b.handlers {
		if h.sub == sub {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers v to every handler before returning. Handlers added or
// removed during delivery take effect from the next Publish.
func (b *Bus[T]) Publish(v T) {
	snapshot := b.handlers
	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	return len(b.handlers)
}
