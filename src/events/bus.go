// Package events is the in-process fanout used to hand a just-written
// transaction to listeners in the same tick, ahead of the slower realtime
// round-trip through redis.
package events

import (
	"log"
	"sort"
	"sync"
)

// Bus fans a payload out to every registered listener, synchronously and in
// registration order. There is no buffering or replay: a listener that
// subscribes after a publish never sees it.
type Bus[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{listeners: make(map[int]func(T))}
}

// Subscribe registers fn and returns its deregistration handle.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Publish invokes every currently registered listener with v. A panicking
// listener does not stop delivery to the rest.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		invoke(fn, v)
	}
}

func invoke[T any](fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bus] listener panic recovered: %v\n", r)
		}
	}()
	fn(v)
}

// Len reports the number of registered listeners.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
