// Package notify delivers value changes to in-process observers.
package notify

import "sync"

// Topic holds the latest value of T and calls every subscriber, in
// subscription order, each time a new value is published. Delivery happens
// on the publishing goroutine.
type Topic[T any] struct {
	mu     sync.Mutex
	value  T
	nextID uint64
	subs   []subscription[T]

	deliver sync.Mutex
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

func NewTopic[T any](initial T) *Topic[T] {
	return &Topic[T]{value: initial}
}

// Subscribe registers fn and calls it straight away with the current value.
// The returned func removes the subscription. fn must not publish to or
// subscribe on the same topic.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})
	v := t.value
	t.mu.Unlock()

	fn(v)

	return func() { t.unsubscribe(id) }
}

func (t *Topic[T]) unsubscribe(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Publish stores v and delivers it to all subscribers before returning.
func (t *Topic[T]) Publish(v T) {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	t.value = v
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Value returns the last published value.
func (t *Topic[T]) Value() T {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.value
}
