// Package lifecycle wires the engine's event stream to the plugin services:
// connect triggers a fetch, spawn applies the loadout, entity creation paints
// weapons, kills bump counters, disconnect evicts, round start reapplies
// music. It also implements the player-facing refresh and sign-in commands.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/strafemod/paintkit/internal/apply"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/event"
	"github.com/strafemod/paintkit/internal/inventory"
	"github.com/strafemod/paintkit/internal/logger"
	"github.com/strafemod/paintkit/internal/refresh"
	"github.com/strafemod/paintkit/internal/worker"
)

// Messenger delivers chat feedback to a player. Implemented by the host
// bridge; everything printed to players goes through here.
type Messenger interface {
	Chat(steamID uint64, message string)
}

// Deps are the services the plugin glue operates on.
type Deps struct {
	Bus       event.Bus
	Store     *inventory.Store
	Refresh   *refresh.Coordinator
	Applier   *apply.Engine
	Corrector *apply.Corrector
	Runtime   engine.Runtime
	Jobs      *worker.Pool
	SignIn    worker.SignInClient
	Chat      Messenger
}

// Plugin is the event-driven core of the cosmetic system.
type Plugin struct {
	deps Deps
}

// New creates the plugin glue and subscribes it to the bus.
func New(deps Deps) *Plugin {
	p := &Plugin{deps: deps}

	deps.Bus.Subscribe(event.PlayerConnected, p.onPlayerConnected)
	deps.Bus.Subscribe(event.PlayerSpawned, p.onPlayerSpawned)
	deps.Bus.Subscribe(event.EntityCreated, p.onEntityCreated)
	deps.Bus.Subscribe(event.PlayerKill, p.onPlayerKill)
	deps.Bus.Subscribe(event.PlayerDisconnected, p.onPlayerDisconnected)
	deps.Bus.Subscribe(event.RoundStart, p.onRoundStart)
	return p
}

// OnTick runs the per-tick corrections. Called by the host bridge once per
// simulation tick.
func (p *Plugin) OnTick() {
	p.deps.Corrector.Run()
}

func (p *Plugin) onPlayerConnected(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.PlayerConnectedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", e.Type)
	}
	p.deps.Refresh.Fetch(ctx, payload.SteamID, false)
	return nil
}

func (p *Plugin) onPlayerSpawned(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.PlayerSpawnedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", e.Type)
	}
	pawn := payload.Pawn
	if pawn == nil || !pawn.Valid() || pawn.IsBot() {
		return nil
	}
	p.deps.Applier.ApplySpawn(pawn, p.deps.Store.Get(pawn.SteamID()))
	return nil
}

func (p *Plugin) onEntityCreated(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.EntityCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", e.Type)
	}
	pawn, weapon := payload.Pawn, payload.Weapon
	if pawn == nil || weapon == nil || !pawn.Valid() || !weapon.Valid() || pawn.IsBot() {
		return nil
	}

	inv := p.deps.Store.Get(pawn.SteamID())
	if apply.IsSprayClass(weapon.ClassName()) {
		p.deps.Applier.ApplyGraffiti(weapon, inv)
	} else {
		p.deps.Applier.ApplyWeapon(pawn, weapon, inv)
	}
	return nil
}

func (p *Plugin) onPlayerKill(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.PlayerKillPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", e.Type)
	}
	attacker := payload.Attacker
	if attacker == nil || !attacker.Valid() || attacker.IsBot() {
		return nil
	}
	inv := p.deps.Store.Get(attacker.SteamID())
	p.deps.Applier.IncrementStatTrak(attacker, payload.WeaponItemID, payload.VictimIsBot, inv)
	return nil
}

func (p *Plugin) onPlayerDisconnected(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.PlayerDisconnectedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", e.Type)
	}
	p.deps.Store.Remove(payload.SteamID)
	p.deps.Refresh.DeregisterMusic(payload.SteamID)
	p.deps.Store.ClearStale(p.connected())
	return nil
}

func (p *Plugin) onRoundStart(ctx context.Context, e event.Event) error {
	// The engine wipes the music kit field between rounds; push it back for
	// every registered player.
	for _, pawn := range p.deps.Runtime.Players() {
		if !pawn.Valid() || !p.deps.Refresh.HasMusic(pawn.SteamID()) {
			continue
		}
		p.deps.Applier.ApplyMusicKit(pawn, p.deps.Store.Get(pawn.SteamID()))
	}
	return nil
}

// connected builds the membership probe ClearStale walks the store with.
func (p *Plugin) connected() func(steamID uint64) bool {
	present := make(map[uint64]struct{})
	for _, pawn := range p.deps.Runtime.Players() {
		if pawn.Valid() {
			present[pawn.SteamID()] = struct{}{}
		}
	}
	return func(steamID uint64) bool {
		_, ok := present[steamID]
		return ok
	}
}

// RefreshCommand handles the player "refresh my loadout" chat command, gated
// by the per-player cooldown. System fetches on connect bypass this path.
func (p *Plugin) RefreshCommand(ctx context.Context, steamID uint64) {
	allowed, remaining := p.deps.Refresh.RefreshAllowed(steamID)
	if !allowed {
		p.chat(steamID, fmt.Sprintf("Please wait %d seconds before refreshing again.",
			int(remaining.Seconds())+1))
		return
	}

	p.chat(steamID, "Refreshing your loadout...")
	p.deps.Refresh.Fetch(ctx, steamID, true)
}

// SignInCommand obtains a login URL in the background and prints it to the
// player. Delivery is marshalled back onto the simulation thread.
func (p *Plugin) SignInCommand(ctx context.Context, steamID uint64) {
	job := worker.SignInJob{
		Client: p.deps.SignIn,
		UserID: steamID,
		Deliver: func(url string, err error) {
			p.deps.Runtime.NextTick(func() {
				if err != nil {
					p.chat(steamID, "Login failed, try again later.")
					return
				}
				p.chat(steamID, "Sign in here: "+url)
			})
		},
	}
	if !p.deps.Jobs.TryEnqueue(job) {
		logger.FromContext(ctx).Warn("sign-in dropped, job queue full", "steam_id", steamID)
		p.chat(steamID, "Login failed, try again later.")
	}
}

func (p *Plugin) chat(steamID uint64, message string) {
	if p.deps.Chat == nil {
		return
	}
	p.deps.Chat.Chat(steamID, message)
}
