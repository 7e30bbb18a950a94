package subscription

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statesub/statesub-go/pkg/log"
)

func TestNewStoreWrapsInitialState(t *testing.T) {
	initial := Map{"count": 0}
	s := NewStore(initial)

	assert.Equal(t, reflect.ValueOf(initial).Pointer(), reflect.ValueOf(s.State()).Pointer(),
		"State() must return the initial map itself")

	s.SetState(Map{"count": 5})
	assert.Equal(t, 5, initial["count"], "mutation must be visible through the initial map")
	assert.Equal(t, reflect.ValueOf(initial).Pointer(), reflect.ValueOf(s.State()).Pointer(),
		"state identity must not change after SetState")
}

func TestNewStoreNilInitial(t *testing.T) {
	s := NewStore(nil)

	require.NotNil(t, s.State())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.ListenerCount())
	assert.NotEmpty(t, s.ID())
}

func TestStoreIDsAreUnique(t *testing.T) {
	a := NewStore(nil)
	b := NewStore(nil)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSetStateIteratedMerge(t *testing.T) {
	s := NewStore(Map{"a": 1, "b": 2})

	updates := []Map{
		{"a": 10},
		{"c": "x"},
		{"b": nil, "a": 11},
		{},
	}
	want := Map{"a": 1, "b": 2}
	for _, u := range updates {
		s.SetState(u)
		Merge(want, u)
	}

	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Map{"a": 11, "b": nil, "c": "x"}, s.Snapshot())
}

func TestSetStateCounterIncrement(t *testing.T) {
	c := NewStore(Map{"count": 0})

	c.SetState(Map{"count": c.State()["count"].(int) + 1})

	assert.Equal(t, 1, c.State()["count"])
}

func TestSetStatePartialLeavesOtherKeys(t *testing.T) {
	c := NewStore(Map{"display": false, "data": []string{}})

	c.SetState(Map{"display": true})

	assert.Len(t, c.State()["data"], 0)
	assert.Equal(t, true, c.State()["display"])
}

func TestSetStateNotifiesWithPartialInOrder(t *testing.T) {
	s := NewStore(Map{"count": 0, "foo": 10})

	var order []string
	var got []Map
	s.Subscribe(func(u Map) { order = append(order, "first"); got = append(got, u) })
	s.Subscribe(func(Map) { order = append(order, "second") })
	s.Subscribe(func(Map) { order = append(order, "third") })

	s.SetState(Map{"count": 1})

	assert.Equal(t, []string{"first", "second", "third"}, order)
	require.Len(t, got, 1)
	assert.Equal(t, Map{"count": 1}, got[0], "listeners receive the partial update, not the full state")
}

func TestSetStateOnComplete(t *testing.T) {
	s := NewStore(nil)

	var listenerRan bool
	s.Subscribe(func(Map) { listenerRan = true })

	calls := 0
	var seen Map
	s.SetState(Map{"x": 1}, func(state Map) {
		calls++
		seen = state
		assert.True(t, listenerRan, "completion runs after fan-out")
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, seen["x"])
	assert.Equal(t, reflect.ValueOf(s.State()).Pointer(), reflect.ValueOf(seen).Pointer(),
		"completion receives the resulting shared state")
}

func TestSetStateNilOnCompleteIgnored(t *testing.T) {
	s := NewStore(nil)
	assert.NotPanics(t, func() { s.SetState(Map{"x": 1}, nil) })
}

func TestSubscribeUnsubscribeRestoresLength(t *testing.T) {
	s := NewStore(nil)
	s.Subscribe(func(Map) {})
	before := s.ListenerCount()

	sub := s.Subscribe(func(Map) {})
	assert.Equal(t, before+1, s.ListenerCount())

	assert.True(t, s.Unsubscribe(sub))
	assert.Equal(t, before, s.ListenerCount())
}

func TestDuplicateRegistrationRemovedOnce(t *testing.T) {
	s := NewStore(nil)

	calls := 0
	fn := func(Map) { calls++ }
	first := s.Subscribe(fn)
	second := s.Subscribe(fn)
	require.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, s.ListenerCount())

	s.SetState(Map{"k": 1})
	assert.Equal(t, 2, calls, "each registration fires")

	first.Unsubscribe()
	s.SetState(Map{"k": 2})
	assert.Equal(t, 3, calls, "remaining registration still fires")

	second.Unsubscribe()
	s.SetState(Map{"k": 3})
	assert.Equal(t, 3, calls)
}

func TestUnsubscribeIsNoopForUnknownHandles(t *testing.T) {
	s := NewStore(nil)
	other := NewStore(nil)

	sub := s.Subscribe(func(Map) {})
	foreign := other.Subscribe(func(Map) {})

	assert.False(t, s.Unsubscribe(nil))
	assert.False(t, s.Unsubscribe(foreign), "handles of another store are ignored")
	assert.Equal(t, 1, other.ListenerCount())

	assert.True(t, sub.Unsubscribe())
	assert.False(t, sub.Unsubscribe(), "second removal is a no-op")
	assert.False(t, s.Unsubscribe(sub))

	var zero *Subscription
	assert.False(t, zero.Unsubscribe())
}

func TestSubscribeKeysFilter(t *testing.T) {
	s := NewStore(Map{"count": 0, "foo": 10})

	calls := 0
	s.SubscribeKeys([]string{"foo"}, func(Map) { calls++ })

	s.SetState(Map{"count": 1})
	assert.Equal(t, 0, calls, "update without foo must not fire")

	s.SetState(Map{"foo": 2})
	assert.Equal(t, 1, calls)

	s.SetState(Map{"foo": 3, "count": 2})
	assert.Equal(t, 2, calls, "overlap on any key fires")
}

func TestSubscribeKeysEmptyMeansAll(t *testing.T) {
	s := NewStore(nil)

	calls := 0
	sub := s.SubscribeKeys(nil, func(Map) { calls++ })
	assert.Empty(t, sub.Keys)

	s.SetState(Map{"anything": true})
	assert.Equal(t, 1, calls)
}

func TestListenerMayUnsubscribeDuringFanOut(t *testing.T) {
	s := NewStore(nil)

	var sub *Subscription
	calls := 0
	sub = s.Subscribe(func(Map) {
		calls++
		sub.Unsubscribe()
	})
	lateCalls := 0
	s.Subscribe(func(Map) { lateCalls++ })

	s.SetState(Map{"a": 1})
	s.SetState(Map{"a": 2})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, lateCalls, "listeners registered at fan-out time still run")
}

func TestListenerMayWriteDuringFanOut(t *testing.T) {
	s := NewStore(Map{"a": 0, "b": 0})

	s.SubscribeKeys([]string{"a"}, func(u Map) {
		s.SetState(Map{"b": u["a"]})
	})

	s.SetState(Map{"a": 7})

	assert.Equal(t, 7, s.State()["b"])
}

func TestUpdateIsAtomic(t *testing.T) {
	s := NewStore(Map{"count": 0})

	notified := 0
	var mu sync.Mutex
	s.Subscribe(func(Map) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	const workers, perWorker = 8, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Update(func(cur Map) Map {
					return Map{"count": cur["count"].(int) + 1}
				})
			}
		}()
	}
	wg.Wait()

	v, _ := s.Get("count")
	assert.Equal(t, workers*perWorker, v)
	assert.Equal(t, workers*perWorker, notified)
}

func TestUpdateOnComplete(t *testing.T) {
	s := NewStore(Map{"n": 1})

	var seen any
	s.Update(func(cur Map) Map { return Map{"n": cur["n"].(int) * 3} }, func(state Map) {
		seen = state["n"]
	})

	assert.Equal(t, 3, seen)
}

func TestUpdatePanicReleasesLock(t *testing.T) {
	s := NewStore(Map{"n": 1})
	fired := 0
	s.Subscribe(func(Map) { fired++ })

	assert.Panics(t, func() {
		s.Update(func(Map) Map { panic("boom") })
	})

	// The store stays usable and the failed update notified no one.
	s.SetState(Map{"n": 2})
	v, ok := s.Get("n")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, fired)
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewStore(Map{"a": 1})

	snap := s.Snapshot()
	snap["a"] = 2

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	dst := Map{"a": 1, "b": 2}
	got := Merge(dst, Map{"b": 3, "c": 4})

	assert.Equal(t, Map{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, reflect.ValueOf(dst).Pointer(), reflect.ValueOf(got).Pointer())
}

// recordingLogger records journal events for testing
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestStoreJournalEvents(t *testing.T) {
	rec := &recordingLogger{}
	s := NewStore(Map{"count": 0}, WithName("counter"), WithEventLogger(rec))

	sub := s.SubscribeKeys([]string{"count"}, func(Map) {})
	s.SetState(Map{"count": 1, "extra": true})
	sub.Unsubscribe()

	require.Len(t, rec.events, 4)

	categories := make([]log.Category, 0, len(rec.events))
	for _, e := range rec.events {
		assert.Equal(t, s.ID(), e.ContainerID)
		assert.Equal(t, "counter", e.ContainerName)
		assert.Equal(t, log.KindMap, e.Kind)
		assert.False(t, e.Timestamp.IsZero())
		categories = append(categories, e.Category)
	}
	assert.Equal(t, []log.Category{
		log.CategoryCreate,
		log.CategorySubscribe,
		log.CategoryUpdate,
		log.CategoryUnsubscribe,
	}, categories)

	assert.Equal(t, Map{"count": 0}, rec.events[0].Payload)
	assert.Equal(t, sub.ID, rec.events[1].SubscriptionID)
	assert.Equal(t, []string{"count"}, rec.events[1].Keys)
	assert.Equal(t, 1, rec.events[1].Listeners)
	assert.Equal(t, []string{"count", "extra"}, rec.events[2].Keys)
	assert.Equal(t, 1, rec.events[2].Listeners)
	assert.Equal(t, 0, rec.events[3].Listeners)
}

func TestStoreJournalFiltersNotCounted(t *testing.T) {
	rec := &recordingLogger{}
	s := NewStore(nil, WithEventLogger(rec))
	s.SubscribeKeys([]string{"foo"}, func(Map) {})

	s.SetState(Map{"bar": 1})

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, log.CategoryUpdate, last.Category)
	assert.Equal(t, 1, last.Listeners, "filtered listeners are invoked, then decline")
}

func TestStoreSlogDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := NewStore(nil, WithName("demo"), WithSlog(logger))
	s.Subscribe(func(Map) {})
	s.SetState(Map{"k": 1})

	out := buf.String()
	assert.True(t, strings.Contains(out, "container=demo"), out)
	assert.Contains(t, out, "listener registered")
	assert.Contains(t, out, "state updated")
}
