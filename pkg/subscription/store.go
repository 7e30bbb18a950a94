package subscription

import (
	"maps"
	"slices"
	"sync"

	"github.com/statesub/statesub-go/pkg/log"
)

// Map is the state of a Store and the shape of its partial updates.
type Map = map[string]any

// Listener receives the partial update applied by a Store mutation.
type Listener func(update Map)

// Store is a container holding a key-value mapping.
//
// The map passed to NewStore is the state: it is never copied or replaced,
// only mutated in place by SetState and Update.
type Store struct {
	mu    sync.RWMutex
	state Map

	listeners *registry[Map]
	instrument
}

// NewStore creates a Store wrapping initial. A nil initial map is replaced
// by a new empty map.
func NewStore(initial Map, opts ...Option) *Store {
	if initial == nil {
		initial = make(Map)
	}
	s := &Store{
		state:      initial,
		listeners:  newRegistry[Map](),
		instrument: newInstrument(log.KindMap, opts),
	}
	s.created(maps.Clone(initial))
	return s
}

// ID returns the unique container identifier.
func (s *Store) ID() string { return s.id }

// Name returns the container name (may be empty).
func (s *Store) Name() string { return s.name }

// State returns the shared state map itself.
//
// Reading the returned map while other goroutines write to the store is a
// data race; concurrent readers use Get or Snapshot.
func (s *Store) State() Map {
	return s.state
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// Snapshot returns a shallow copy of the state.
func (s *Store) Snapshot() Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state)
}

// Len returns the number of keys in the state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

// Subscribe registers fn to be called with every subsequent partial update.
// Registering the same function twice yields two handles.
func (s *Store) Subscribe(fn Listener) *Subscription {
	return s.SubscribeKeys(nil, fn)
}

// SubscribeKeys registers fn behind a key-subset filter: fn is only called
// for updates touching at least one of keys. An empty keys list behaves
// like Subscribe.
func (s *Store) SubscribeKeys(keys []string, fn Listener) *Subscription {
	sub := &Subscription{
		ID:    nextID(),
		Keys:  slices.Clone(keys),
		owner: s,
	}
	count := s.listeners.add(sub.ID, KeyFilter(sub.Keys, fn))
	s.subscribed(sub, count)
	return sub
}

// Unsubscribe removes the listener registered under sub. It is a no-op,
// returning false, for handles of other containers or handles already
// removed.
func (s *Store) Unsubscribe(sub *Subscription) bool {
	if sub == nil || sub.owner != s {
		return false
	}
	return s.unsubscribe(sub)
}

func (s *Store) unsubscribe(sub *Subscription) bool {
	removed, count := s.listeners.remove(sub.ID)
	if removed {
		s.unsubscribed(sub, count)
	}
	return removed
}

// ListenerCount returns the number of registered listeners.
func (s *Store) ListenerCount() int {
	return s.listeners.len()
}

// SetState shallow-merges partial into the state and then calls every
// registered listener, in subscription order, with partial. The optional
// onComplete callbacks run afterwards with the resulting state. That state
// is the shared map; callbacks that may run concurrently with other writers
// read through Get or Snapshot instead.
func (s *Store) SetState(partial Map, onComplete ...func(Map)) {
	s.mu.Lock()
	Merge(s.state, partial)
	s.mu.Unlock()

	s.fanOut(partial, onComplete)
}

// Update computes a partial update from the current state and applies it
// like SetState. fn runs under the write lock, so read-modify-write
// sequences such as incrementing a counter are atomic. fn must not call
// back into the store. A nil result applies an empty update, which still
// notifies listeners.
func (s *Store) Update(fn func(current Map) Map, onComplete ...func(Map)) {
	s.fanOut(s.apply(fn), onComplete)
}

// apply runs fn and merges its result under the write lock. The lock is
// released even if fn panics.
func (s *Store) apply(fn func(current Map) Map) Map {
	s.mu.Lock()
	defer s.mu.Unlock()

	partial := fn(s.state)
	Merge(s.state, partial)
	return partial
}

func (s *Store) fanOut(partial Map, onComplete []func(Map)) {
	notified := s.listeners.notify(partial)
	s.updated(sortedKeys(partial), partial, notified)

	for _, fn := range onComplete {
		if fn != nil {
			fn(s.state)
		}
	}
}

// Merge copies every key of partial into dst, replacing existing values,
// and returns dst. Keys of dst absent from partial are left untouched.
func Merge(dst, partial Map) Map {
	for k, v := range partial {
		dst[k] = v
	}
	return dst
}

func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
