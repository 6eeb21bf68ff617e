// Package cache provides an in-memory read-through cache with per-key request
// deduplication and explicit invalidation.
//
// The cache keeps a derived view of an external source of truth. Reads go
// through [ReadThrough.Get] (or the typed [Fetch]); writers to the source are
// expected to call [ReadThrough.Invalidate] or [ReadThrough.InvalidatePattern]
// for every key that could contain a view of the data they changed.
//
// # Reads
//
// Get serves a value in priority order:
//
//   - A fresh entry is returned without calling the fetch function (hit).
//   - If a fetch for the key is already running, the caller waits for it and
//     receives the same value or the same error.
//   - Otherwise the caller starts the fetch (miss). On success the result is
//     stored; on failure nothing is stored and any previous entry survives.
//
// At most one fetch per key is in flight at any time:
//
//	c := cache.New(cache.WithDefaultTTL(5 * time.Minute))
//
//	schools, err := cache.Fetch(ctx, c, "schools", cache.TTLMedium,
//	    func(ctx context.Context) ([]docstore.Document, error) {
//	        return store.Find(ctx, "schools", nil)
//	    })
//
// An entry is fresh while now - storedAt <= ttl. Stale entries are not swept
// in the background; they are replaced on the next successful read.
//
// TTL semantics for Get and Set:
//   - Positive duration: entry is fresh for this duration
//   - Zero: use the cache's configured default TTL (5 minutes by default)
//   - Negative: entry never goes stale
//
// The package exports four tiers: [TTLShort], [TTLMedium], [TTLLong] and
// [TTLVeryLong].
//
// # Invalidation
//
//	c.Invalidate("schools")
//	c.InvalidatePattern(regexp.MustCompile(`^teachers_school_`))
//	c.Clear()
//
// Invalidation does not wait for or cancel in-flight fetches. A fetch that
// started before the invalidation stores its result when it completes.
//
// # Cancellation
//
// The context passed to Get bounds only the caller's wait. The cache imposes
// no timeout on fetch functions: a fetch that never returns holds its key,
// and every caller of that key without a deadline waits with it.
//
// # Capacity
//
// The cache is unbounded by default. Use [WithMaxEntries] when the keyspace
// can grow without limit; the least recently used entry is evicted first.
//
// # Error Handling
//
// Fetch errors are returned unchanged. The package defines sentinel errors for
// its own failures:
//
//   - [ErrEmptyKey]: Get called with an empty key
//   - [ErrNilFetch]: Get called without a fetch function
//   - [ErrTypeMismatch]: Fetch found a value of a different type under the key
//   - [ErrFetchPanicked]: the fetch function panicked (see [PanicError])
package cache
