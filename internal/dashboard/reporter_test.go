package dashboard_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schooldash/internal/dashboard"
	"github.com/dmitrymomot/schooldash/pkg/cache"
)

func TestStatsReporter(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid schedule", func(t *testing.T) {
		t.Parallel()

		_, err := dashboard.NewStatsReporter(cache.New(), "every minute", nil)
		require.ErrorIs(t, err, dashboard.ErrInvalidSchedule)
	})

	t.Run("report logs counters", func(t *testing.T) {
		t.Parallel()

		c := cache.New()
		c.Set("schools", []string{"a"}, cache.TTLShort)
		_, err := c.Get(context.Background(), "schools", 0, func(context.Context) (any, error) { return nil, nil })
		require.NoError(t, err)

		var buf bytes.Buffer
		r, err := dashboard.NewStatsReporter(c, "@every 1h", slog.New(slog.NewTextHandler(&buf, nil)))
		require.NoError(t, err)

		r.Report()
		out := buf.String()
		assert.Contains(t, out, "hits=1")
		assert.Contains(t, out, "misses=0")
		assert.Contains(t, out, "size=1")
		assert.Contains(t, out, "hit_ratio=1")
	})

	t.Run("start and stop", func(t *testing.T) {
		t.Parallel()

		r, err := dashboard.NewStatsReporter(cache.New(), "*/5 * * * *", nil)
		require.NoError(t, err)

		r.Start()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, r.Stop(ctx))
	})
}
