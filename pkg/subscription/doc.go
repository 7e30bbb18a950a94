// Package subscription implements shared state containers that notify
// registered listeners on every mutation.
//
// A container owns one authoritative state value, shared by reference with
// every holder, and an ordered registry of listeners. Mutating the state
// invokes each listener, in subscription order, with the applied update.
//
// # Container Kinds
//
// The state shape is fixed when the container is created:
//   - Store holds a key-value Map. SetState shallow-merges a partial Map
//     into the state in place; keys absent from the update are untouched.
//     Listeners receive the partial update, not the full state.
//   - Value holds an opaque scalar of any type. Set replaces the value and
//     listeners receive the new value.
//
// # Listener Handles
//
// Subscribe returns a *Subscription handle. Removal is by handle, so the
// same function registered twice yields two independent handles and each
// must be removed on its own. Removing an unknown or already removed
// handle is a no-op.
//
// # Key-Subset Filtering
//
// SubscribeKeys and KeyFilter forward a notification only when the update
// touches at least one of the requested keys. An empty key list forwards
// everything.
//
// # Bindings
//
// Bind ties a filtered listener to a context: it is registered on entry and
// removed when the context is done. The binding exposes a coalesced change
// signal for consumers that re-evaluate on change rather than inspect each
// update.
//
// # Concurrency
//
// Each container guards its state with a mutex, so the merge performed by
// one update is atomic with respect to other writers. Listener fan-out runs
// synchronously on the writer's goroutine after the state lock is released.
// There is no ordering guarantee between concurrent writers or across
// containers. Unsubscribing stops delivery only; writes issued later by
// in-flight work still land in the shared state.
package subscription
