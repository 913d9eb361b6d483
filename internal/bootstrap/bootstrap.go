// Package bootstrap assembles the plugin from configuration: backend client,
// catalog lookup, stores, coordinators and the event glue, plus the ops
// server. The host bridge calls Build once at plugin load and Shutdown at
// unload.
package bootstrap

import (
	"context"
	"time"

	"github.com/strafemod/paintkit/internal/apply"
	"github.com/strafemod/paintkit/internal/backend"
	"github.com/strafemod/paintkit/internal/config"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/event"
	"github.com/strafemod/paintkit/internal/inventory"
	"github.com/strafemod/paintkit/internal/lifecycle"
	"github.com/strafemod/paintkit/internal/logger"
	"github.com/strafemod/paintkit/internal/refresh"
	"github.com/strafemod/paintkit/internal/scheduler"
	"github.com/strafemod/paintkit/internal/server"
	"github.com/strafemod/paintkit/internal/worker"
)

const (
	poolWorkers   = 2
	poolQueueSize = 64

	// staleSweepInterval backs up disconnect-driven eviction; a missed
	// disconnect event must not leak an entry forever.
	staleSweepInterval = 5 * time.Minute
)

// App holds the assembled plugin components.
type App struct {
	Config    *config.Config
	Bus       event.Bus
	Store     *inventory.Store
	Backend   *backend.Client
	Lookup    *equipment.Lookup
	Refresh   *refresh.Coordinator
	Applier   *apply.Engine
	Corrector *apply.Corrector
	Plugin    *lifecycle.Plugin
	Pool      *worker.Pool
	Scheduler *scheduler.Scheduler
	Ops       *server.Server
}

// Build wires the plugin. The runtime and messenger come from the host
// bridge. A failed catalog fetch degrades to an empty lookup; a bad pinned
// loadout file is fatal, matching the rest of config validation.
func Build(ctx context.Context, cfg *config.Config, runtime engine.Runtime, chat lifecycle.Messenger) (*App, error) {
	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false))

	client := backend.NewClient(cfg.BackendBaseURL(), cfg.CatalogURL, cfg.APIKey)

	lookup := equipment.NewEmptyLookup()
	if cfg.CatalogURL != "" {
		descriptors, err := client.FetchCatalog(ctx)
		if err != nil {
			// Every item renders the current mesh until the next reload.
			logger.Warn("catalog fetch failed, legacy lookup disabled", "error", err)
		} else {
			lookup = equipment.NewLookup(descriptors)
			logger.Info("equipment catalog loaded", "entries", lookup.Size())
		}
	}

	store := inventory.NewStore()
	if cfg.PinnedLoadoutsPath != "" {
		count, err := inventory.LoadPinned(cfg.PinnedLoadoutsPath, store)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			logger.Info("pinned loadouts loaded", "count", count)
		}
	}

	pool := worker.NewPool(poolWorkers, poolQueueSize)
	pool.Start()

	coord := refresh.NewCoordinator(store, client, lookup, runtime, refresh.Options{
		Attempts:   3,
		RetryDelay: time.Second,
		Cooldown:   time.Duration(cfg.RefreshCooldownSeconds) * time.Second,
	})

	applyCfg := apply.Config{
		FallbackTeam:   cfg.FallbackTeamLookup,
		WearCacheFix:   cfg.WearCacheFix,
		AgentsEnabled:  cfg.AgentsEnabled(),
		IgnoreBotKills: cfg.IgnoreBotKills,
	}
	applier := apply.NewEngine(applyCfg, lookup, client, pool)
	corrector := apply.NewCorrector(applyCfg, lookup, store, runtime)

	bus := event.NewMemoryBus()
	plugin := lifecycle.New(lifecycle.Deps{
		Bus:       bus,
		Store:     store,
		Refresh:   coord,
		Applier:   applier,
		Corrector: corrector,
		Runtime:   runtime,
		Jobs:      pool,
		SignIn:    client,
		Chat:      chat,
	})

	sched := scheduler.New(pool)
	sched.Schedule(staleSweepInterval, staleSweepJob{store: store, runtime: runtime})

	ops := server.NewServer(cfg.OpsPort, cfg.Version, store)
	go func() {
		if err := ops.Start(); err != nil {
			logger.Warn("ops server stopped", "error", err)
		}
	}()

	return &App{
		Config:    cfg,
		Bus:       bus,
		Store:     store,
		Backend:   client,
		Lookup:    lookup,
		Refresh:   coord,
		Applier:   applier,
		Corrector: corrector,
		Plugin:    plugin,
		Pool:      pool,
		Scheduler: sched,
		Ops:       ops,
	}, nil
}

// staleSweepJob evicts store entries for players that are gone. The store is
// lock-protected, so running off the simulation thread is fine.
type staleSweepJob struct {
	store   *inventory.Store
	runtime engine.Runtime
}

func (j staleSweepJob) Process(ctx context.Context) error {
	present := make(map[uint64]struct{})
	for _, pawn := range j.runtime.Players() {
		if pawn.Valid() {
			present[pawn.SteamID()] = struct{}{}
		}
	}
	j.store.ClearStale(func(steamID uint64) bool {
		_, ok := present[steamID]
		return ok
	})
	return nil
}
