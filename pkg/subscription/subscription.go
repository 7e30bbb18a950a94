package subscription

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/statesub/statesub-go/pkg/log"
	"github.com/statesub/statesub-go/pkg/metrics"
)

// registryDegree is the B-tree degree of listener registries.
const registryDegree = 16

// Subscription is the handle of one registered listener.
type Subscription struct {
	// ID is the process-wide unique handle identifier. IDs increase
	// monotonically, which gives the registry its subscription order.
	ID uint64

	// Keys is the key-subset filter the listener was registered with
	// (empty = all keys).
	Keys []string

	owner unsubscriber
}

type unsubscriber interface {
	unsubscribe(sub *Subscription) bool
}

// Unsubscribe removes the listener from its container.
// It returns false if the listener was already removed.
func (s *Subscription) Unsubscribe() bool {
	if s == nil || s.owner == nil {
		return false
	}
	return s.owner.unsubscribe(s)
}

// registry is an ordered collection of listeners keyed by handle ID.
type registry[P any] struct {
	mu      sync.Mutex
	entries *btree.Map[uint64, func(P)]
}

func newRegistry[P any]() *registry[P] {
	return &registry[P]{entries: btree.NewMap[uint64, func(P)](registryDegree)}
}

// add stores fn under id and returns the new registry size.
func (r *registry[P]) add(id uint64, fn func(P)) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Set(id, fn)
	return r.entries.Len()
}

// remove deletes the entry for id. It reports whether an entry existed
// and the registry size afterwards.
func (r *registry[P]) remove(id uint64) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries.Delete(id)
	return ok, r.entries.Len()
}

// snapshot returns the registered listeners in subscription order.
func (r *registry[P]) snapshot() []func(P) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]func(P), 0, r.entries.Len())
	r.entries.Scan(func(_ uint64, fn func(P)) bool {
		out = append(out, fn)
		return true
	})
	return out
}

func (r *registry[P]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Len()
}

// notify invokes every listener registered at call time with update and
// returns how many were invoked.
func (r *registry[P]) notify(update P) int {
	fns := r.snapshot()
	for _, fn := range fns {
		fn(update)
	}
	return len(fns)
}

// idGenerator generates unique subscription IDs.
var idGenerator atomic.Uint64

// nextID returns the next unique subscription ID.
func nextID() uint64 {
	return idGenerator.Add(1)
}

// Option configures a container.
type Option func(*options)

type options struct {
	name    string
	logger  *slog.Logger
	events  log.Logger
	metrics *metrics.Recorder
}

// WithName sets the container name used in journal events, metrics and logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithSlog sets the operational logger. Containers log at debug level.
func WithSlog(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEventLogger sets the journal that receives container events.
func WithEventLogger(l log.Logger) Option {
	return func(o *options) { o.events = l }
}

// WithMetrics sets the metrics recorder. Without it, metrics go to the
// go-metrics global instance.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// instrument carries the identity and observability hooks shared by both
// container kinds.
type instrument struct {
	id      string
	kind    log.Kind
	name    string
	logger  *slog.Logger
	events  log.Logger
	metrics *metrics.Recorder
}

func newInstrument(kind log.Kind, opts []Option) instrument {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.events == nil {
		o.events = log.NoopLogger{}
	}

	in := instrument{
		id:      uuid.NewString(),
		kind:    kind,
		name:    o.name,
		events:  o.events,
		metrics: o.metrics,
	}
	if o.logger != nil {
		in.logger = o.logger.With(slog.String("container", in.label()))
	}
	return in
}

func (in *instrument) label() string {
	if in.name != "" {
		return in.name
	}
	return in.id
}

func (in *instrument) debug(msg string, args ...any) {
	if in.logger != nil {
		in.logger.Debug(msg, args...)
	}
}

func (in *instrument) emit(e log.Event) {
	e.Timestamp = time.Now()
	e.ContainerID = in.id
	e.ContainerName = in.name
	e.Kind = in.kind
	in.events.Log(e)
}

func (in *instrument) created(initial any) {
	in.emit(log.Event{Category: log.CategoryCreate, Payload: initial})
	in.metrics.Listeners(in.name, 0)
}

func (in *instrument) subscribed(sub *Subscription, count int) {
	in.debug("listener registered", "sub_id", sub.ID, "keys", sub.Keys, "listeners", count)
	in.emit(log.Event{
		Category:       log.CategorySubscribe,
		SubscriptionID: sub.ID,
		Keys:           slices.Clone(sub.Keys),
		Listeners:      count,
	})
	in.metrics.Listeners(in.name, count)
}

func (in *instrument) unsubscribed(sub *Subscription, count int) {
	in.debug("listener removed", "sub_id", sub.ID, "listeners", count)
	in.emit(log.Event{
		Category:       log.CategoryUnsubscribe,
		SubscriptionID: sub.ID,
		Listeners:      count,
	})
	in.metrics.Listeners(in.name, count)
}

func (in *instrument) updated(keys []string, payload any, notified int) {
	in.debug("state updated", "keys", keys, "notified", notified)
	in.emit(log.Event{
		Category:  log.CategoryUpdate,
		Keys:      keys,
		Payload:   payload,
		Listeners: notified,
	})
	in.metrics.Updated(in.name)
	in.metrics.Notified(in.name, notified)
}
