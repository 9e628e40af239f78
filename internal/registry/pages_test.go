package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(name string, hash uint64) *PageInfo {
	return &PageInfo{
		Name:    name,
		Path:    "pages/" + name + ".html",
		Modules: []string{"fade"},
		Hash:    hash,
	}
}

func TestPageRegistry_RegisterAndGet(t *testing.T) {
	r := NewPageRegistry()
	r.Register(info("home", 1))

	got, ok := r.Get("home")
	require.True(t, ok)
	assert.Equal(t, "pages/home.html", got.Path)
	assert.Equal(t, 1, r.Count())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestPageRegistry_AllSortedByName(t *testing.T) {
	r := NewPageRegistry()
	r.Register(info("work", 1))
	r.Register(info("about", 2))
	r.Register(info("home", 3))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "about", all[0].Name)
	assert.Equal(t, "home", all[1].Name)
	assert.Equal(t, "work", all[2].Name)
}

func TestPageRegistry_WatchReceivesEvents(t *testing.T) {
	r := NewPageRegistry()
	ch := r.Watch()

	r.Register(info("home", 1))
	r.Register(info("home", 2))
	r.Remove("home")

	types := make([]EventType, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case ev := <-ch:
			types = append(types, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	assert.Equal(t, []EventType{EventTypeAdded, EventTypeUpdated, EventTypeRemoved}, types)
}

func TestPageRegistry_UnchangedHashSuppressesEvent(t *testing.T) {
	r := NewPageRegistry()
	ch := r.Watch()

	r.Register(info("home", 7))
	<-ch

	r.Register(info("home", 7))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPageRegistry_RemoveUnknownIsNoop(t *testing.T) {
	r := NewPageRegistry()
	ch := r.Watch()

	r.Remove("ghost")

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPageRegistry_UnWatchClosesChannel(t *testing.T) {
	r := NewPageRegistry()
	ch := r.Watch()
	r.UnWatch(ch)

	_, open := <-ch
	assert.False(t, open)

	// Broadcasting after UnWatch must not panic.
	r.Register(info("home", 1))
}
