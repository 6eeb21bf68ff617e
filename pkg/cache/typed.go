package cache

import (
	"context"
	"fmt"
	"time"
)

// Fetch is the typed form of ReadThrough.Get. The cache stores values
// type-erased, so every caller of a key must agree on its type; a value of
// any other type yields ErrTypeMismatch.
//
// Example:
//
//	count, err := cache.Fetch(ctx, c, "teachers_count", cache.TTLShort,
//	    func(ctx context.Context) (int, error) {
//	        return store.Count(ctx, "teachers", nil)
//	    })
func Fetch[T any](ctx context.Context, c *ReadThrough, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if fn == nil {
		return zero, ErrNilFetch
	}

	v, err := c.Get(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}

	return assert[T](key, v)
}

// Store is the typed form of ReadThrough.Set.
func Store[T any](c *ReadThrough, key string, value T, ttl time.Duration) {
	c.Set(key, value, ttl)
}

func assert[T any](key string, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}

	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}
