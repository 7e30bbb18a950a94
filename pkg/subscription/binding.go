package subscription

import (
	"context"
	"sync"
)

// Binding scopes a store subscription to a context. It is the counterpart
// of a reactive component: it reads the current state, registers a
// (possibly key-filtered) listener on entry, and removes it when the scope
// ends.
type Binding struct {
	store   *Store
	sub     *Subscription
	changes chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// Bind registers a listener on store that lasts until ctx is done or Close
// is called. When keys are given, only updates touching one of them signal
// a change.
//
// Each binding runs one goroutine that waits for the end of its scope. A
// binding whose ctx is never done (for example context.Background()) keeps
// that goroutine and its listener until Close is called.
func Bind(ctx context.Context, store *Store, keys ...string) *Binding {
	b := &Binding{
		store:   store,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	b.sub = store.SubscribeKeys(keys, b.signal)

	go func() {
		select {
		case <-ctx.Done():
			b.Close()
		case <-b.done:
		}
	}()

	return b
}

// signal records a pending change. Signals coalesce: any number of updates
// between two receives yields a single pending signal.
func (b *Binding) signal(Map) {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Changes returns the channel that receives a value whenever a relevant
// update happened since the last receive.
func (b *Binding) Changes() <-chan struct{} {
	return b.changes
}

// Done returns a channel closed when the binding's scope has ended.
func (b *Binding) Done() <-chan struct{} {
	return b.done
}

// State returns a snapshot of the bound store's state.
func (b *Binding) State() Map {
	return b.store.Snapshot()
}

// Get returns the value stored under key in the bound store.
func (b *Binding) Get(key string) (any, bool) {
	return b.store.Get(key)
}

// SetState writes through to the bound store. Writes still land after the
// binding is closed; only notification delivery stops.
func (b *Binding) SetState(partial Map, onComplete ...func(Map)) {
	b.store.SetState(partial, onComplete...)
}

// Subscription returns the handle of the binding's listener.
func (b *Binding) Subscription() *Subscription {
	return b.sub
}

// Close ends the binding's scope and removes its listener. It is safe to
// call Close multiple times.
func (b *Binding) Close() {
	b.closeOnce.Do(func() {
		b.store.Unsubscribe(b.sub)
		close(b.done)
	})
}
