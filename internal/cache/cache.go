// Package cache runs one shared polling loop per (endpoint, subject) key.
package cache

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrNoListeners = errors.New("no listeners for cache key")

const (
	// DefaultInterval is used by listeners that ask for no interval
	DefaultInterval = 60 * time.Second
	// DefaultFetchTimeout bounds a single background fetch
	DefaultFetchTimeout = 30 * time.Second
)

// Key identifies one cached value.
type Key struct {
	Endpoint string
	Subject  string
}

// Fetcher loads the value of a key.
type Fetcher[V any] func(ctx context.Context) (V, error)

// Entry is the cached state of a key. A failed refresh keeps the previous value
// and records the error, so Loaded with a non-nil Err means "stale".
type Entry[V any] struct {
	Value     V
	Loaded    bool
	Err       error
	Errors    int
	UpdatedAt time.Time
}

// Failing reports whether the latest refresh failed.
func (e Entry[V]) Failing() bool {
	return e.Err != nil
}

type listener[V any] struct {
	id       uint64
	interval time.Duration
	callback func(Entry[V])
}

type loop[V any] struct {
	key       Key
	fetch     Fetcher[V]
	listeners []listener[V]
	errors    int
	timer     *time.Timer
	stopped   bool
}

func (l *loop[V]) interval() time.Duration {
	if len(l.listeners) == 0 {
		return 0
	}
	out := l.listeners[0].interval
	for _, li := range l.listeners[1:] {
		out = min(out, li.interval)
	}
	return out
}

// Cache holds entries and the loops refreshing them.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[Key]Entry[V]
	loops      map[Key]*loop[V]
	nextID     uint64
	visibility Visibility
	closed     bool

	pageLoad     time.Time
	now          func() time.Time
	random       func() float64
	fetchTimeout time.Duration
	base         context.Context
	cancel       context.CancelFunc
	log          zerolog.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now          func() time.Time
	random       func() float64
	fetchTimeout time.Duration
	pageLoad     time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRandom replaces the jitter source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(o *options) { o.random = fn }
}

// WithFetchTimeout bounds background fetches. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithPageLoad sets the start of the initial grace period.
func WithPageLoad(t time.Time) Option {
	return func(o *options) { o.pageLoad = t }
}

// New creates an empty cache.
func New[V any](log zerolog.Logger, opts ...Option) *Cache[V] {
	o := options{
		now:          time.Now,
		random:       rand.Float64,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageLoad.IsZero() {
		o.pageLoad = o.now()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Cache[V]{
		entries:      make(map[Key]Entry[V]),
		loops:        make(map[Key]*loop[V]),
		pageLoad:     o.pageLoad,
		now:          o.now,
		random:       o.random,
		fetchTimeout: o.fetchTimeout,
		base:         base,
		cancel:       cancel,
		log:          log,
	}
}

// AddListener subscribes callback to key, starting the key's loop if needed.
// The loop polls at the smallest interval of its listeners; a listener that
// lowers the interval triggers an immediate refresh. The returned function
// removes the listener and stops the loop when it was the last one.
func (c *Cache[V]) AddListener(key Key, fetch Fetcher[V], interval time.Duration, callback func(Entry[V])) (remove func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	l, ok := c.loops[key]
	if !ok {
		l = &loop[V]{key: key}
		c.loops[key] = l
	}
	// the newest listener's fetcher carries the current connection
	l.fetch = fetch
	previous := l.interval()
	c.nextID++
	id := c.nextID
	l.listeners = append(l.listeners, listener[V]{id: id, interval: interval, callback: callback})
	trigger := previous == 0 || interval < previous
	c.mu.Unlock()

	if trigger {
		go c.run(l)
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.removeListener(l, id) })
	}
}

func (c *Cache[V]) removeListener(l *loop[V], id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l.listeners = slices.DeleteFunc(l.listeners, func(li listener[V]) bool { return li.id == id })
	if len(l.listeners) > 0 {
		return
	}
	c.stopLocked(l)
}

func (c *Cache[V]) stopLocked(l *loop[V]) {
	l.stopped = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if c.loops[l.key] == l {
		delete(c.loops, l.key)
	}
}

// Get returns the entry of key.
func (c *Cache[V]) Get(key Key) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// Set stores value for key and notifies its listeners. With initializeOnly an
// existing value is left alone.
func (c *Cache[V]) Set(key Key, value V, initializeOnly bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && initializeOnly && e.Loaded {
		c.mu.Unlock()
		return
	}
	e := Entry[V]{Value: value, Loaded: true, UpdatedAt: c.now()}
	c.entries[key] = e
	callbacks := c.callbacksLocked(key)
	c.mu.Unlock()

	notify(callbacks, e)
}

// Invalidate refreshes key in the background. With clear the cached value is
// dropped first and listeners see an unloaded entry.
func (c *Cache[V]) Invalidate(key Key, clear bool) {
	c.mu.Lock()
	var callbacks []func(Entry[V])
	if clear {
		delete(c.entries, key)
		callbacks = c.callbacksLocked(key)
	}
	l := c.loops[key]
	c.mu.Unlock()

	notify(callbacks, Entry[V]{})
	if l != nil {
		go c.run(l)
	}
}

// Refresh fetches key now on the caller's context and returns the new entry.
func (c *Cache[V]) Refresh(ctx context.Context, key Key) (Entry[V], error) {
	c.mu.Lock()
	l := c.loops[key]
	c.mu.Unlock()
	if l == nil {
		return Entry[V]{}, ErrNoListeners
	}
	e, ok := c.refresh(ctx, l)
	if !ok {
		return Entry[V]{}, ErrNoListeners
	}
	return e, e.Err
}

// RefreshAll refreshes every active loop and returns the errors joined.
func (c *Cache[V]) RefreshAll(ctx context.Context) error {
	c.mu.Lock()
	loops := make([]*loop[V], 0, len(c.loops))
	for _, l := range c.loops {
		loops = append(loops, l)
	}
	c.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, l := range loops {
		wg.Add(1)
		go func(l *loop[V]) {
			defer wg.Done()
			if e, ok := c.refresh(ctx, l); ok && e.Err != nil {
				mu.Lock()
				errs = append(errs, e.Err)
				mu.Unlock()
			}
		}(l)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// SetVisibility changes the throttling used for future scheduling.
func (c *Cache[V]) SetVisibility(v Visibility) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visibility == v {
		return
	}
	c.visibility = v
	c.log.Debug().Str("visibility", v.String()).Msg("cache visibility changed")
}

// Close stops every loop. In-flight fetches are cancelled and their results dropped.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, l := range c.loops {
		c.stopLocked(l)
	}
	c.cancel()
}

// run is the timer entry point of a loop.
func (c *Cache[V]) run(l *loop[V]) {
	ctx, cancel := c.base, context.CancelFunc(func() {})
	if c.fetchTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.base, c.fetchTimeout)
	}
	defer cancel()
	c.refresh(ctx, l)
}

// refresh fetches once and reschedules. ok is false when the loop was stopped
// before or during the fetch, in which case nothing is stored.
func (c *Cache[V]) refresh(ctx context.Context, l *loop[V]) (Entry[V], bool) {
	c.mu.Lock()
	if l.stopped {
		c.mu.Unlock()
		return Entry[V]{}, false
	}
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	fetch := l.fetch
	c.mu.Unlock()

	value, err := fetch(ctx)

	c.mu.Lock()
	if l.stopped {
		c.mu.Unlock()
		return Entry[V]{}, false
	}
	e := c.entries[l.key]
	if err != nil {
		l.errors++
		e.Err = err
		e.Errors = l.errors
		c.log.Warn().Err(err).Str("endpoint", l.key.Endpoint).Str("subject", l.key.Subject).Int("errors", l.errors).Msg("cache refresh failed")
	} else {
		l.errors = 0
		e = Entry[V]{Value: value, Loaded: true, UpdatedAt: c.now()}
	}
	c.entries[l.key] = e

	if l.timer == nil {
		wait := nextWait(waitParams{
			interval:      l.interval(),
			errors:        l.errors,
			sincePageLoad: c.now().Sub(c.pageLoad),
			visibility:    c.visibility,
			random:        c.random(),
		})
		l.timer = time.AfterFunc(wait, func() { c.run(l) })
	}
	callbacks := c.callbacksLocked(l.key)
	c.mu.Unlock()

	notify(callbacks, e)
	return e, true
}

func (c *Cache[V]) callbacksLocked(key Key) []func(Entry[V]) {
	l := c.loops[key]
	if l == nil {
		return nil
	}
	out := make([]func(Entry[V]), 0, len(l.listeners))
	for _, li := range l.listeners {
		if li.callback != nil {
			out = append(out, li.callback)
		}
	}
	return out
}

func notify[V any](callbacks []func(Entry[V]), e Entry[V]) {
	for _, fn := range callbacks {
		fn(e)
	}
}
