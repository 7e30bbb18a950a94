package subscription

import (
	"sync"

	"github.com/statesub/statesub-go/pkg/log"
)

// Value is a container holding an opaque scalar, such as a string shared
// between several editors. Updates replace the whole value.
type Value[T any] struct {
	mu   sync.RWMutex
	cell *T

	listeners *registry[T]
	instrument
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T, opts ...Option) *Value[T] {
	cell := new(T)
	*cell = initial
	v := &Value[T]{
		cell:       cell,
		listeners:  newRegistry[T](),
		instrument: newInstrument(log.KindValue, opts),
	}
	v.created(initial)
	return v
}

// ID returns the unique container identifier.
func (v *Value[T]) ID() string { return v.id }

// Name returns the container name (may be empty).
func (v *Value[T]) Name() string { return v.name }

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return *v.cell
}

// Ref returns the cell holding the value. The pointer never changes over
// the container lifetime; reads through it race with concurrent Set calls.
func (v *Value[T]) Ref() *T {
	return v.cell
}

// Subscribe registers fn to be called with every subsequent value.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{ID: nextID(), owner: v}
	count := v.listeners.add(sub.ID, fn)
	v.subscribed(sub, count)
	return sub
}

// Unsubscribe removes the listener registered under sub.
func (v *Value[T]) Unsubscribe(sub *Subscription) bool {
	if sub == nil || sub.owner != v {
		return false
	}
	return v.unsubscribe(sub)
}

func (v *Value[T]) unsubscribe(sub *Subscription) bool {
	removed, count := v.listeners.remove(sub.ID)
	if removed {
		v.unsubscribed(sub, count)
	}
	return removed
}

// ListenerCount returns the number of registered listeners.
func (v *Value[T]) ListenerCount() int {
	return v.listeners.len()
}

// Set replaces the value, notifies listeners in subscription order with
// the new value and then runs the optional onComplete callbacks.
func (v *Value[T]) Set(val T, onComplete ...func(T)) {
	v.mu.Lock()
	*v.cell = val
	v.mu.Unlock()

	v.fanOut(val, onComplete)
}

// Update replaces the value with fn(current) under the write lock and then
// notifies like Set. fn must not call back into the container.
func (v *Value[T]) Update(fn func(current T) T, onComplete ...func(T)) {
	v.fanOut(v.apply(fn), onComplete)
}

// apply replaces the value with fn(current) under the write lock. The lock
// is released even if fn panics.
func (v *Value[T]) apply(fn func(current T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	val := fn(*v.cell)
	*v.cell = val
	return val
}

func (v *Value[T]) fanOut(val T, onComplete []func(T)) {
	notified := v.listeners.notify(val)
	v.updated(nil, val, notified)

	for _, fn := range onComplete {
		if fn != nil {
			fn(val)
		}
	}
}
