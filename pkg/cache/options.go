package cache

import (
	"io"
	"log/slog"
	"time"
)

// Option configures the read-through cache.
type Option func(*options)

type options struct {
	now        func() time.Time
	logger     *slog.Logger
	defaultTTL time.Duration
	maxEntries int
}

func defaultOptions() *options {
	return &options{
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultTTL: DefaultTTL,
		maxEntries: 0, // 0 = unlimited
	}
}

// WithDefaultTTL sets the freshness window used when Get or Set is called
// with a zero TTL.
// Default: 5 minutes.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		if d != 0 {
			o.defaultTTL = d
		}
	}
}

// WithMaxEntries bounds the number of entries. When the limit is reached,
// the least recently used entry is evicted.
// Zero means unlimited.
// Default: 0 (unlimited).
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = max(n, 0)
	}
}

// WithClock replaces the wall-clock time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for debug output on fetch failures
// and invalidations.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
