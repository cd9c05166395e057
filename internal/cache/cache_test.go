package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextWait_BackoffMonotonic(t *testing.T) {
	t.Parallel()
	base := waitParams{interval: 30 * time.Second, sincePageLoad: time.Hour, random: 0.5}

	assert.Equal(t, 30*time.Second, nextWait(base))

	prev := time.Duration(0)
	for n := 1; n <= 20; n++ {
		p := base
		p.errors = n
		wait := nextWait(p)
		assert.GreaterOrEqual(t, wait, prev, "errors=%d", n)
		assert.LessOrEqual(t, wait, MaxBackoff)
		prev = wait
	}
	assert.Equal(t, MaxBackoff, prev)

	one := base
	one.errors = 1
	assert.Equal(t, time.Second, nextWait(one))
	// one success resets the counter
	assert.Equal(t, 30*time.Second, nextWait(base))
}

func TestNextWait_Modifiers(t *testing.T) {
	t.Parallel()
	p := waitParams{interval: 10 * time.Second, sincePageLoad: time.Hour, random: 0.5}

	grace := p
	grace.sincePageLoad = 2 * time.Second
	assert.Equal(t, 14*time.Second, nextWait(grace))

	hidden := p
	hidden.visibility = Hidden
	assert.Equal(t, HiddenInterval, nextWait(hidden))

	unfocused := p
	unfocused.visibility = Unfocused
	assert.Equal(t, 15*time.Second, nextWait(unfocused))

	low, high := p, p
	low.random, high.random = 0, 0.999999
	assert.Equal(t, 8*time.Second, nextWait(low))
	assert.InDelta(t, float64(12*time.Second), float64(nextWait(high)), float64(time.Millisecond))
}

// counter is a fetcher that can fail on demand and block until released.
type counter struct {
	calls atomic.Int64
	fail  atomic.Bool
	block chan struct{}
}

func (c *counter) fetch(ctx context.Context) (int, error) {
	n := int(c.calls.Add(1))
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if c.fail.Load() {
		return 0, errors.New("rpc down")
	}
	return n, nil
}

func newTestCache(t *testing.T) *Cache[int] {
	t.Helper()
	c := New[int](zerolog.Nop(), WithPageLoad(time.Now().Add(-time.Hour)), WithRandom(func() float64 { return 0.5 }))
	t.Cleanup(c.Close)
	return c
}

func waitCalls(t *testing.T, c *counter, n int64) {
	t.Helper()
	require.Eventually(t, func() bool { return c.calls.Load() >= n }, 2*time.Second, 5*time.Millisecond)
}

func waitLoaded(t *testing.T, c *Cache[int], key Key) {
	t.Helper()
	require.Eventually(t, func() bool {
		e, ok := c.Get(key)
		return ok && (e.Loaded || e.Failing())
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCache_FirstListenerRefreshes(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{}
	key := Key{Endpoint: "e", Subject: "s"}

	got := make(chan Entry[int], 4)
	remove := c.AddListener(key, f.fetch, time.Hour, func(e Entry[int]) { got <- e })
	defer remove()

	select {
	case e := <-got:
		assert.True(t, e.Loaded)
		assert.Equal(t, 1, e.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh")
	}
	e, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 1, e.Value)
}

func TestCache_StaleValueOnError(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{}
	key := Key{Endpoint: "e", Subject: "s"}
	remove := c.AddListener(key, f.fetch, time.Hour, nil)
	defer remove()
	waitLoaded(t, c, key)

	e, err := c.Refresh(context.Background(), key)
	require.NoError(t, err)
	value := e.Value

	f.fail.Store(true)
	e, err = c.Refresh(context.Background(), key)
	require.Error(t, err)
	assert.True(t, e.Loaded)
	assert.True(t, e.Failing())
	assert.Equal(t, value, e.Value)
	assert.Equal(t, 1, e.Errors)

	_, err = c.Refresh(context.Background(), key)
	require.Error(t, err)
	e, _ = c.Get(key)
	assert.Equal(t, 2, e.Errors)

	f.fail.Store(false)
	e, err = c.Refresh(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, e.Failing())
	assert.Zero(t, e.Errors)
}

func TestCache_NeverLoadedVsFailing(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{}
	f.fail.Store(true)
	key := Key{Endpoint: "e", Subject: "s"}
	remove := c.AddListener(key, f.fetch, time.Hour, nil)
	defer remove()

	_, err := c.Refresh(context.Background(), key)
	require.Error(t, err)
	e, ok := c.Get(key)
	require.True(t, ok)
	assert.False(t, e.Loaded)
	assert.True(t, e.Failing())
}

func TestCache_LowerIntervalTriggersRefresh(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{}
	key := Key{Endpoint: "e", Subject: "s"}

	r1 := c.AddListener(key, f.fetch, time.Hour, nil)
	defer r1()
	waitCalls(t, f, 1)

	// same interval: no extra refresh
	r2 := c.AddListener(key, f.fetch, time.Hour, nil)
	defer r2()

	// faster listener refreshes now and then polls at its interval
	r3 := c.AddListener(key, f.fetch, 20*time.Millisecond, nil)
	defer r3()
	waitCalls(t, f, 4)
}

func TestCache_NewListenerReplacesFetcher(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := Key{Endpoint: "e", Subject: "s"}

	old, fresh := &counter{}, &counter{}
	r1 := c.AddListener(key, old.fetch, time.Hour, nil)
	defer r1()
	waitCalls(t, old, 1)

	r2 := c.AddListener(key, func(ctx context.Context) (int, error) {
		n, err := fresh.fetch(ctx)
		return n * 100, err
	}, time.Hour, nil)
	defer r2()

	e, err := c.Refresh(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 100, e.Value)
	assert.Equal(t, int64(1), old.calls.Load())
}

func TestCache_LastListenerStopsLoop(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{}
	key := Key{Endpoint: "e", Subject: "s"}

	remove := c.AddListener(key, f.fetch, 10*time.Millisecond, nil)
	waitCalls(t, f, 3)
	remove()
	remove() // idempotent

	stoppedAt := f.calls.Load()
	time.Sleep(100 * time.Millisecond)
	// at most one fetch may have been in flight while removing
	assert.LessOrEqual(t, f.calls.Load(), stoppedAt+1)

	_, err := c.Refresh(context.Background(), key)
	require.ErrorIs(t, err, ErrNoListeners)
}

func TestCache_RemoveDuringInflightRefresh(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	f := &counter{block: make(chan struct{})}
	key := Key{Endpoint: "e", Subject: "s"}

	var notified atomic.Int64
	remove := c.AddListener(key, f.fetch, 10*time.Millisecond, func(Entry[int]) { notified.Add(1) })
	waitCalls(t, f, 1)

	remove()
	close(f.block)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), f.calls.Load(), "no timer left behind")
	assert.Zero(t, notified.Load())
	_, ok := c.Get(key)
	assert.False(t, ok, "result of a stopped loop is discarded")

	c.mu.Lock()
	assert.Empty(t, c.loops)
	c.mu.Unlock()
}

func TestCache_SetAndInvalidate(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := Key{Endpoint: "e", Subject: "s"}

	c.Set(key, 7, true)
	c.Set(key, 8, true)
	e, _ := c.Get(key)
	assert.Equal(t, 7, e.Value)
	c.Set(key, 9, false)
	e, _ = c.Get(key)
	assert.Equal(t, 9, e.Value)

	f := &counter{block: make(chan struct{})}
	var mu sync.Mutex
	var seen []Entry[int]
	remove := c.AddListener(key, f.fetch, time.Hour, func(e Entry[int]) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
	})
	defer remove()
	waitCalls(t, f, 1)

	c.Invalidate(key, true)
	_, ok := c.Get(key)
	assert.False(t, ok)
	mu.Lock()
	require.NotEmpty(t, seen)
	assert.False(t, seen[0].Loaded)
	mu.Unlock()
	close(f.block)
}

func TestCache_RefreshAllAndClose(t *testing.T) {
	t.Parallel()
	c := New[int](zerolog.Nop())
	a, b := &counter{}, &counter{}
	ra := c.AddListener(Key{Subject: "a"}, a.fetch, time.Hour, nil)
	defer ra()
	rb := c.AddListener(Key{Subject: "b"}, b.fetch, time.Hour, nil)
	defer rb()
	waitCalls(t, a, 1)
	waitCalls(t, b, 1)

	b.fail.Store(true)
	err := c.RefreshAll(context.Background())
	require.Error(t, err)
	assert.GreaterOrEqual(t, a.calls.Load(), int64(2))

	c.Close()
	c.Close()
	_, err = c.Refresh(context.Background(), Key{Subject: "a"})
	require.ErrorIs(t, err, ErrNoListeners)
	noop := c.AddListener(Key{Subject: "c"}, a.fetch, time.Hour, nil)
	noop()
}
