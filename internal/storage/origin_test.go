package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"traceper/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects events delivered to one area.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newTestOrigin() *Origin {
	return NewOrigin("http://localhost:8080", repository.NewMemory(), nil)
}

func TestArea_WriteVisibleToAllTabsImmediately(t *testing.T) {
	o := newTestOrigin()
	a, b := o.Open("a"), o.Open("b")
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "token", "xyz"))

	v, ok, err := a.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "xyz", v)

	v, ok, err = b.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "xyz", v)
}

func TestArea_EventsSkipWriter(t *testing.T) {
	o := newTestOrigin()
	a, b := o.Open("a"), o.Open("b")
	defer a.Close()
	defer b.Close()

	var fromA, fromB recorder
	a.OnChange(fromA.add)
	b.OnChange(fromB.add)

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "token", "xyz"))
	require.NoError(t, a.Remove(ctx, "token"))

	require.Eventually(t, func() bool { return len(fromB.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	got := fromB.snapshot()
	require.Equal(t, Event{Key: "token", NewValue: "xyz", Source: "a"}, got[0])
	require.Equal(t, Event{Key: "token", OldValue: "xyz", Removed: true, Source: "a"}, got[1])

	// Nothing ever reaches the writer.
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, fromA.snapshot())
}

func TestArea_NoEventWithoutChange(t *testing.T) {
	o := newTestOrigin()
	a, b := o.Open("a"), o.Open("b")
	defer a.Close()
	defer b.Close()

	var rec recorder
	b.OnChange(rec.add)

	ctx := context.Background()
	require.NoError(t, a.Remove(ctx, "token")) // absent: no event
	require.NoError(t, a.Set(ctx, "token", "xyz"))
	require.NoError(t, a.Set(ctx, "token", "xyz")) // unchanged: no event

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Len(t, rec.snapshot(), 1)
}

func TestArea_CancelStopsDelivery(t *testing.T) {
	o := newTestOrigin()
	a, b := o.Open("a"), o.Open("b")
	defer a.Close()
	defer b.Close()

	var rec recorder
	cancel := b.OnChange(rec.add)
	cancel()
	cancel() // idempotent

	require.NoError(t, a.Set(context.Background(), "token", "xyz"))
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, rec.snapshot())
}

func TestArea_CloseDetaches(t *testing.T) {
	o := newTestOrigin()
	a := o.Open("a")
	b := o.Open("b")
	require.Equal(t, 2, o.Len())

	b.Close()
	b.Close()
	require.Equal(t, 1, o.Len())

	// Writing after the peer closed must not block or panic.
	require.NoError(t, a.Set(context.Background(), "token", "xyz"))
	a.Close()
	require.Equal(t, 0, o.Len())
}

func TestArea_DeliversInWriteOrder(t *testing.T) {
	o := newTestOrigin()
	a, b := o.Open("a"), o.Open("b")
	defer a.Close()
	defer b.Close()

	var rec recorder
	b.OnChange(rec.add)

	ctx := context.Background()
	values := []string{"1", "2", "3", "4", "5"}
	for _, v := range values {
		require.NoError(t, a.Set(ctx, "token", v))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == len(values) }, time.Second, 5*time.Millisecond)
	for i, ev := range rec.snapshot() {
		require.Equal(t, values[i], ev.NewValue)
	}
}

func TestArea_UnavailableBackendWritesFail(t *testing.T) {
	o := NewOrigin("http://localhost:8080", repository.Unavailable{}, nil)
	a := o.Open("a")
	defer a.Close()

	require.ErrorIs(t, a.Set(context.Background(), "token", "x"), repository.ErrUnavailable)
	_, ok, err := a.Get(context.Background(), "token")
	require.False(t, ok)
	require.ErrorIs(t, err, repository.ErrUnavailable)
}
