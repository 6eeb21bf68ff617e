// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/schooldash/internal/api"
	"github.com/dmitrymomot/schooldash/internal/config"
	"github.com/dmitrymomot/schooldash/internal/dashboard"
	"github.com/dmitrymomot/schooldash/pkg/cache"
	"github.com/dmitrymomot/schooldash/pkg/db"
	"github.com/dmitrymomot/schooldash/pkg/docstore"
	"github.com/dmitrymomot/schooldash/pkg/health"
	"github.com/dmitrymomot/schooldash/pkg/redis"
)

// App holds the wired components and their shutdown hooks.
type App struct {
	Store    docstore.Store
	Cache    *cache.ReadThrough
	Service  *dashboard.Service
	Server   *api.Server
	Reporter *dashboard.StatsReporter

	checks    health.Checks
	shutdown  []func(context.Context) error
	importer  docstore.Importer
	logger    *slog.Logger
	serverCfg config.HTTP
}

// New connects the configured store backend and builds the service graph.
// On error every resource opened so far is released.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *App, err error) {
	a := &App{checks: health.Checks{}, logger: log, serverCfg: cfg.HTTP}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Store.FixtureFallback && cfg.Store.Driver != config.DriverMemory {
		fixtures, err := docstore.DefaultFixtures()
		if err != nil {
			return nil, err
		}
		secondary, err := docstore.NewMemoryWithFixtures(fixtures)
		if err != nil {
			return nil, err
		}
		store = docstore.NewFallback(store, secondary, log)
	}
	a.Store = store

	a.Cache = cache.New(
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithLogger(log.With(slog.String("component", "cache"))),
	)
	a.Service = dashboard.NewService(a.Store, a.Cache, dashboard.WithLogger(log))
	a.Server = api.NewServer(a.Service,
		api.WithLogger(log),
		api.WithChecks(a.checks),
		api.WithRequestTimeout(cfg.HTTP.RequestTimeout),
	)

	a.Reporter, err = dashboard.NewStatsReporter(a.Cache, cfg.Cache.StatsSchedule, log.With(slog.String("component", "cache")))
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, db.Shutdown(pool))
		a.checks["postgres"] = db.Healthcheck(pool)

		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, pool, docstore.Migrations(), cfg.Database.MigrationsTable, a.logger); err != nil {
				return nil, err
			}
		}

		store := docstore.NewPostgres(pool)
		a.importer = store
		return store, nil

	case config.DriverRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, redis.Shutdown(client))
		a.checks["redis"] = redis.Healthcheck(client)

		store := docstore.NewRedis(client, docstore.WithKeyPrefix(cfg.Store.RedisKeyPrefix))
		a.importer = store
		return store, nil

	case config.DriverMemory:
		if !cfg.Store.SeedMemory {
			store := docstore.NewMemory()
			a.importer = store
			return store, nil
		}
		fixtures, err := docstore.DefaultFixtures()
		if err != nil {
			return nil, err
		}
		store, err := docstore.NewMemoryWithFixtures(fixtures)
		if err != nil {
			return nil, err
		}
		a.importer = store
		return store, nil

	default:
		return nil, config.ErrInvalidDriver
	}
}

// Seed loads the bundled fixtures into the configured backend.
func (a *App) Seed(ctx context.Context) (int, error) {
	fixtures, err := docstore.DefaultFixtures()
	if err != nil {
		return 0, err
	}
	// Seeding through the importer keeps fixture ids, even behind a fallback.
	n, err := docstore.Seed(ctx, seedTarget{a.Store, a.importer}, fixtures)
	if err != nil {
		return n, err
	}
	a.Cache.Clear()
	return n, nil
}

// Checks returns the readiness checks of the opened backends.
func (a *App) Checks() health.Checks { return a.checks }

// Serve starts the stats reporter and the HTTP server and blocks until ctx is
// cancelled. Backends are closed on return.
func (a *App) Serve(ctx context.Context) error {
	a.Reporter.Start()

	hooks := append([]func(context.Context) error{a.Reporter.Stop}, a.shutdown...)
	a.shutdown = nil

	return a.Server.Run(ctx, a.serverCfg.Addr, a.serverCfg.ShutdownTimeout, hooks...)
}

// Close releases the backends opened by New.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range a.shutdown {
		errs = append(errs, fn(ctx))
	}
	a.shutdown = nil
	return errors.Join(errs...)
}

// seedTarget routes Seed through an explicit importer.
type seedTarget struct {
	docstore.Store
	importer docstore.Importer
}

func (s seedTarget) Import(ctx context.Context, collection string, docs []docstore.Document) error {
	return s.importer.Import(ctx, collection, docs)
}
