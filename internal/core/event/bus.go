package event

import (
	"fmt"
	"reflect"
	"sync"
)

// maxRounds bounds how often DispatchAll re-drains events emitted by handlers.
const maxRounds = 8

// Bus queues server events in push order. Emit may be called concurrently by
// systems of one layer; DispatchAll runs from a single exclusive system and
// delivers every queued event, in push order, to the handlers of its type.
type Bus struct {
	mu       sync.Mutex
	queue    []any
	spare    []any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		queue:    make([]any, 0, 256),
		spare:    make([]any, 0, 256),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit appends an event to the queue.
func Emit[T any](b *Bus, event T) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()
}

// EmitAll appends events keeping their relative order.
func (b *Bus) EmitAll(events []any) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, events...)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T. Handlers of one
// type run in subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Len returns the number of queued events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bus) swap() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = b.spare[:0]
	b.spare = out
	return out
}

// DispatchAll delivers queued events. Events emitted by handlers are
// delivered in a following round of the same call. It returns the number of
// events delivered; events without a handler are dropped.
func (b *Bus) DispatchAll() int {
	n := 0
	for round := 0; round < maxRounds; round++ {
		events := b.swap()
		if len(events) == 0 {
			return n
		}
		for i, ev := range events {
			for _, h := range b.handlers[reflect.TypeOf(ev)] {
				h(ev)
			}
			events[i] = nil
			n++
		}
	}
	if left := b.Len(); left > 0 {
		panic(fmt.Sprintf("event: %d events still queued after %d dispatch rounds", left, maxRounds))
	}
	return n
}
