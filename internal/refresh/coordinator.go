// Package refresh coordinates inventory fetches from the backend: at most
// one in flight per player, a bounded retry loop, and completion marshalled
// back onto the simulation thread before the store is touched.
package refresh

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/inventory"
	"github.com/strafemod/paintkit/internal/logger"
	"github.com/strafemod/paintkit/internal/metrics"
)

// EquippedFetcher retrieves a player's equipped inventory from the backend.
type EquippedFetcher interface {
	FetchEquipped(ctx context.Context, steamID uint64) (*domain.PlayerInventory, error)
}

// Options tune the coordinator.
type Options struct {
	// Attempts is the fetch attempt cap. The bounded count doubles as the
	// timeout substitute; there is no explicit cancellation.
	Attempts int
	// RetryDelay is the base delay between attempts, scaled linearly.
	RetryDelay time.Duration
	// Cooldown gates player-initiated refresh commands. Zero disables the
	// gate. System fetches on connect are never gated.
	Cooldown time.Duration
}

// DefaultOptions match the backend's expectations.
func DefaultOptions() Options {
	return Options{
		Attempts:   3,
		RetryDelay: time.Second,
	}
}

// Coordinator owns the in-flight set, the cooldown tracker, and the set of
// players whose music kit needs round-start reapplication. Constructed at
// plugin load, torn down at unload; all state is keyed by steam id.
type Coordinator struct {
	store   *inventory.Store
	client  EquippedFetcher
	lookup  *equipment.Lookup
	runtime engine.Runtime
	opts    Options

	// inflight is the per-player fetch claim. LoadOrStore is the atomic
	// claim-or-skip; a second request while one is in flight is dropped,
	// never queued.
	inflight sync.Map

	cooldowns *gocache.Cache

	musicMu sync.RWMutex
	music   map[uint64]struct{}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(store *inventory.Store, client EquippedFetcher, lookup *equipment.Lookup, runtime engine.Runtime, opts Options) *Coordinator {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultOptions().Attempts
	}
	cooldownTTL := opts.Cooldown
	if cooldownTTL <= 0 {
		cooldownTTL = time.Minute
	}
	return &Coordinator{
		store:     store,
		client:    client,
		lookup:    lookup,
		runtime:   runtime,
		opts:      opts,
		cooldowns: gocache.New(cooldownTTL, 10*cooldownTTL),
		music:     make(map[uint64]struct{}),
	}
}

// Fetch requests the player's inventory. Without force it is a no-op when an
// inventory is already loaded. Returns immediately; the fetch itself runs in
// the background and its completion is applied on the next tick.
func (c *Coordinator) Fetch(ctx context.Context, steamID uint64, force bool) {
	if !force && c.store.Has(steamID) {
		return
	}
	if _, loaded := c.inflight.LoadOrStore(steamID, struct{}{}); loaded {
		metrics.FetchDropped.Inc()
		return
	}

	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	go c.fetch(ctx, steamID)
}

// fetch runs off the simulation thread. The in-flight claim is released on
// every exit path, and panics are contained here: an unrecovered panic on
// this goroutine would take down the whole game server.
func (c *Coordinator) fetch(ctx context.Context, steamID uint64) {
	defer c.inflight.Delete(steamID)

	log := logger.FromContext(ctx).With("steam_id", steamID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("inventory fetch panicked", "panic", r)
		}
	}()

	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		inv, err := c.client.FetchEquipped(ctx, steamID)
		if err == nil {
			metrics.FetchAttempts.WithLabelValues(metrics.ResultOK).Inc()
			c.annotateLegacy(inv)
			c.runtime.NextTick(func() { c.install(steamID, inv) })
			c.StampCooldown(steamID)
			return
		}

		metrics.FetchAttempts.WithLabelValues(metrics.ResultError).Inc()
		log.Warn("inventory fetch attempt failed", "attempt", attempt, "error", err)
		if attempt < c.opts.Attempts {
			time.Sleep(c.opts.RetryDelay * time.Duration(attempt))
		}
	}

	// Give up silently: the last-known-good inventory stays in place.
	metrics.FetchGaveUp.Inc()
	log.Warn("inventory fetch gave up", "attempts", c.opts.Attempts)
}

// install replaces the store entry. Runs on the simulation thread.
func (c *Coordinator) install(steamID uint64, inv *domain.PlayerInventory) {
	// The wear cache must survive the refresh: the client's material cache
	// does not reset just because we fetched new data.
	if c.store.Has(steamID) {
		inv.WearCache = c.store.Get(steamID).WearCache
	}
	c.store.Put(steamID, inv)

	if inv.MusicKit != nil {
		c.RegisterMusic(steamID)
	} else {
		c.DeregisterMusic(steamID)
	}
}

// annotateLegacy resolves the legacy-model flag for every weapon item
// against the equipment catalog.
func (c *Coordinator) annotateLegacy(inv *domain.PlayerInventory) {
	for _, knife := range inv.Knives {
		knife.Legacy = c.lookup.IsLegacy(knife.Def, knife.Paint)
	}
	for _, byDef := range inv.Weapons {
		for _, item := range byDef {
			item.Legacy = c.lookup.IsLegacy(item.Def, item.Paint)
		}
	}
}

// RefreshAllowed reports whether a player-initiated refresh may run, and the
// remaining cooldown when it may not.
func (c *Coordinator) RefreshAllowed(steamID uint64) (bool, time.Duration) {
	if c.opts.Cooldown <= 0 {
		return true, 0
	}
	_, expiry, found := c.cooldowns.GetWithExpiration(cooldownKey(steamID))
	if !found {
		return true, 0
	}
	return false, time.Until(expiry)
}

// StampCooldown records a refresh for cooldown purposes.
func (c *Coordinator) StampCooldown(steamID uint64) {
	if c.opts.Cooldown <= 0 {
		return
	}
	c.cooldowns.Set(cooldownKey(steamID), time.Now(), c.opts.Cooldown)
}

// RegisterMusic marks the player for round-start music kit reapplication.
func (c *Coordinator) RegisterMusic(steamID uint64) {
	c.musicMu.Lock()
	c.music[steamID] = struct{}{}
	c.musicMu.Unlock()
}

// DeregisterMusic removes the player from music kit reapplication.
func (c *Coordinator) DeregisterMusic(steamID uint64) {
	c.musicMu.Lock()
	delete(c.music, steamID)
	c.musicMu.Unlock()
}

// HasMusic reports whether the player is registered for music reapplication.
func (c *Coordinator) HasMusic(steamID uint64) bool {
	c.musicMu.RLock()
	defer c.musicMu.RUnlock()
	_, ok := c.music[steamID]
	return ok
}

func cooldownKey(steamID uint64) string {
	return strconv.FormatUint(steamID, 10)
}
