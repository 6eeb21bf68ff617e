package dashboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/schooldash/pkg/cache"
)

// StatsReporter periodically logs cache statistics.
type StatsReporter struct {
	cron   *cron.Cron
	cache  *cache.ReadThrough
	logger *slog.Logger
}

// NewStatsReporter schedules Report on a five-field cron expression or a
// descriptor such as "@every 1m".
func NewStatsReporter(c *cache.ReadThrough, schedule string, logger *slog.Logger) (*StatsReporter, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &StatsReporter{
		cron:   cron.New(cron.WithParser(parser)),
		cache:  c,
		logger: logger,
	}
	r.cron.Schedule(sched, cron.FuncJob(r.Report))
	return r, nil
}

// Report logs the current counters once.
func (r *StatsReporter) Report() {
	st := r.cache.Stats()

	var ratio float64
	if total := st.Hits + st.Misses; total > 0 {
		ratio = float64(st.Hits) / float64(total)
	}

	r.logger.Info("cache stats",
		slog.Uint64("hits", st.Hits),
		slog.Uint64("misses", st.Misses),
		slog.Uint64("evictions", st.Evictions),
		slog.Int("size", st.Size),
		slog.Float64("hit_ratio", ratio),
	)
}

// Start runs the schedule in the background.
func (r *StatsReporter) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running report to finish or ctx
// to expire.
func (r *StatsReporter) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
