package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindSignalsChanges(t *testing.T) {
	s := NewStore(Map{"count": 0})
	b := Bind(context.Background(), s)
	defer b.Close()

	s.SetState(Map{"count": 1})

	select {
	case <-b.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}
	assert.Equal(t, Map{"count": 1}, b.State())
}

func TestBindCoalescesSignals(t *testing.T) {
	s := NewStore(nil)
	b := Bind(context.Background(), s)
	defer b.Close()

	for i := 0; i < 5; i++ {
		s.SetState(Map{"i": i})
	}

	<-b.Changes()
	select {
	case <-b.Changes():
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestBindKeyFilter(t *testing.T) {
	s := NewStore(Map{"count": 0, "foo": 10})
	b := Bind(context.Background(), s, "foo")
	defer b.Close()

	s.SetState(Map{"count": 1})
	select {
	case <-b.Changes():
		t.Fatal("count update should not signal a foo binding")
	default:
	}

	b.SetState(Map{"foo": 11})
	select {
	case <-b.Changes():
	default:
		t.Fatal("foo update should signal")
	}

	v, ok := b.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 11, v)
	assert.Equal(t, []string{"foo"}, b.Subscription().Keys)
}

func TestBindContextCancelRemovesListener(t *testing.T) {
	s := NewStore(Map{"display": false, "data": []string{}})
	ctx, cancel := context.WithCancel(context.Background())
	b := Bind(ctx, s)
	require.Equal(t, 1, s.ListenerCount())

	cancel()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("binding did not end after context cancel")
	}
	assert.Equal(t, 0, s.ListenerCount())

	// In-flight work completing after the scope ended still mutates state.
	completed := false
	b.SetState(Map{"data": []string{"Minh"}}, func(state Map) {
		completed = true
	})
	assert.True(t, completed)
	assert.Equal(t, []string{"Minh"}, s.State()["data"])

	select {
	case <-b.Changes():
		t.Fatal("closed binding must not receive signals")
	default:
	}
}

func TestBindCloseIdempotent(t *testing.T) {
	s := NewStore(nil)
	b := Bind(context.Background(), s)

	b.Close()
	b.Close()

	assert.Equal(t, 0, s.ListenerCount())
	select {
	case <-b.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}
}
