package cache

import (
	"container/list"
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc reads the authoritative value for a key from the backing source.
type FetchFunc func(ctx context.Context) (any, error)

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
}

// entry holds a cached value with the time it was written and its freshness window.
type entry struct {
	storedAt time.Time
	value    any
	key      string
	ttl      time.Duration // negative = never expires
}

// fresh reports whether the entry is still within its freshness window at now.
func (e *entry) fresh(now time.Time) bool {
	if e.ttl < 0 {
		return true
	}
	return now.Sub(e.storedAt) <= e.ttl
}

// ReadThrough is an in-memory read-through cache with per-entry TTLs,
// per-key request deduplication and explicit invalidation.
//
// A miss makes the caller the leader for that key: it runs the fetch function
// while concurrent callers for the same key wait for the leader's result.
// Stale entries are not swept; they are replaced by the next successful fetch
// or removed by Invalidate, InvalidatePattern or Clear.
//
// Cached values are shared between callers and must be treated as read-only.
type ReadThrough struct {
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	inflight map[string]struct{}
	opts     *options
	group    singleflight.Group
	stats    Stats
	mu       sync.Mutex
}

// New creates a read-through cache.
//
// Example:
//
//	c := cache.New(
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithLogger(log),
//	)
//
//	schools, err := cache.Fetch(ctx, c, "schools", cache.TTLMedium,
//	    func(ctx context.Context) ([]School, error) {
//	        return repo.ListSchools(ctx)
//	    })
func New(opts ...Option) *ReadThrough {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &ReadThrough{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		inflight: make(map[string]struct{}),
		opts:     o,
	}
}

// Get returns the value for key, calling fetch when there is no fresh entry.
//
// Concurrent callers for a key that is being fetched share the result of the
// in-flight fetch, including its error. Errors are returned exactly as fetch
// produced them and are never cached.
//
// ctx bounds only this caller's wait. The fetch itself runs with a context
// that keeps the leader's values but is never canceled, and it keeps the key's
// in-flight slot until it returns.
//
// TTL semantics: positive = fresh for this duration, zero = default TTL,
// negative = never expires.
func (c *ReadThrough) Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (any, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if fetch == nil {
		return nil, ErrNilFetch
	}

	c.mu.Lock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		if e.fresh(c.opts.now()) {
			c.stats.Hits++
			c.order.MoveToFront(elem)
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
	}

	// Only the caller that starts the fetch counts as a miss.
	if _, ok := c.inflight[key]; !ok {
		c.stats.Misses++
		c.inflight[key] = struct{}{}
	}

	// Registration happens under c.mu so the in-flight table and the
	// singleflight group never disagree about a key.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(fetchCtx, key, c.resolveTTL(ttl), fetch)
	})

	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load runs fetch as the leader for key and publishes the outcome.
// The in-flight slot is released before any waiter observes the result.
func (c *ReadThrough) load(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val, err = nil, &PanicError{Key: key, Value: r}
		}

		c.mu.Lock()
		delete(c.inflight, key)
		c.group.Forget(key)
		if err == nil {
			c.store(key, val, ttl)
		}
		c.mu.Unlock()

		if err != nil {
			c.opts.logger.DebugContext(ctx, "cache fetch failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}()

	return fetch(ctx)
}

// Set stores value under key, replacing any existing entry.
// TTL semantics are the same as for Get.
func (c *ReadThrough) Set(key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, value, c.resolveTTL(ttl))
}

// Has reports whether key holds a fresh entry.
// A stale entry that has not been replaced yet reports false.
func (c *ReadThrough) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	return elem.Value.(*entry).fresh(c.opts.now())
}

// Invalidate removes the entry for key. Removing a missing key is a no-op.
// A fetch already in flight for key is not affected and will store its result.
func (c *ReadThrough) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// InvalidatePattern removes every entry whose key matches re and returns
// how many entries were removed. Matching is unanchored, as with
// regexp.MatchString.
func (c *ReadThrough) InvalidatePattern(re *regexp.Regexp) int {
	if re == nil {
		return 0
	}

	c.mu.Lock()
	removed := 0
	for key, elem := range c.items {
		if re.MatchString(key) {
			c.removeElement(elem)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.opts.logger.Debug("cache entries invalidated",
			slog.String("pattern", re.String()),
			slog.Int("removed", removed),
		)
	}

	return removed
}

// Clear removes all entries. Counters and in-flight fetches are kept.
func (c *ReadThrough) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Stats returns a snapshot of the cache counters.
func (c *ReadThrough) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = len(c.items)
	return s
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *ReadThrough) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = Stats{}
}

func (c *ReadThrough) resolveTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return c.opts.defaultTTL
	}
	return ttl
}

// store writes an entry stamped with the current time.
// Caller must hold the mutex.
func (c *ReadThrough) store(key string, value any, ttl time.Duration) {
	now := c.opts.now()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.storedAt = now
		e.ttl = ttl
		c.order.MoveToFront(elem)
		return
	}

	if c.opts.maxEntries > 0 && len(c.items) >= c.opts.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
			c.stats.Evictions++
		}
	}

	e := &entry{key: key, value: value, storedAt: now, ttl: ttl}
	c.items[key] = c.order.PushFront(e)
}

// removeElement drops an entry from both the index and the recency list.
// Caller must hold the mutex.
func (c *ReadThrough) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
