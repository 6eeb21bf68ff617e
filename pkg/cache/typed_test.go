package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schooldash/pkg/cache"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	type counts struct {
		Teachers int
		Schools  int
	}

	t.Run("returns typed value and caches it", func(t *testing.T) {
		t.Parallel()

		c := cache.New()
		ctx := context.Background()

		got, err := cache.Fetch(ctx, c, "dashboard_stats", cache.TTLShort, func(context.Context) (counts, error) {
			return counts{Teachers: 3, Schools: 1}, nil
		})
		require.NoError(t, err)
		require.Equal(t, counts{Teachers: 3, Schools: 1}, got)

		got, err = cache.Fetch(ctx, c, "dashboard_stats", cache.TTLShort, func(context.Context) (counts, error) {
			t.Error("fetch must not be called")
			return counts{}, nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, got.Teachers)
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()

		c := cache.New()
		cache.Store(c, "schools", []string{"a"}, time.Minute)

		_, err := cache.Fetch(context.Background(), c, "schools", time.Minute, func(context.Context) (int, error) {
			return 0, nil
		})
		require.ErrorIs(t, err, cache.ErrTypeMismatch)
	})

	t.Run("propagates fetch error", func(t *testing.T) {
		t.Parallel()

		c := cache.New()
		boom := errors.New("boom")

		_, err := cache.Fetch(context.Background(), c, "k", time.Minute, func(context.Context) ([]string, error) {
			return nil, boom
		})
		require.Same(t, boom, err)
	})

	t.Run("nil slice result is cached", func(t *testing.T) {
		t.Parallel()

		c := cache.New()
		ctx := context.Background()

		got, err := cache.Fetch(ctx, c, "empty", time.Minute, func(context.Context) ([]string, error) {
			return nil, nil
		})
		require.NoError(t, err)
		require.Nil(t, got)
		require.True(t, c.Has("empty"))
	})

	t.Run("nil fetch", func(t *testing.T) {
		t.Parallel()

		_, err := cache.Fetch[int](context.Background(), cache.New(), "k", time.Minute, nil)
		require.ErrorIs(t, err, cache.ErrNilFetch)
	})
}
