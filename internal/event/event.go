// Package event is the in-process dispatch between the engine-facing glue
// and the plugin services. The host bridge publishes engine callbacks here;
// services subscribe instead of hanging handlers off ambient globals.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/strafemod/paintkit/internal/engine"
)

// EventSchemaVersion is stamped on every event
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Engine lifecycle event types
const (
	PlayerConnected    Type = "player.connected"
	PlayerSpawned      Type = "player.spawned"
	EntityCreated      Type = "entity.created"
	PlayerKill         Type = "player.kill"
	PlayerDisconnected Type = "player.disconnected"
	RoundStart         Type = "round.start"
)

// Event represents a generic event in the system
type Event struct {
	Version string
	Type    Type
	Payload interface{}
}

// Typed event payloads

// PlayerConnectedPayload fires when a human player finishes connecting.
type PlayerConnectedPayload struct {
	SteamID uint64
}

// PlayerSpawnedPayload fires on pawn spawn; the pawn is live at dispatch
// time but handlers must re-validate after any async hop.
type PlayerSpawnedPayload struct {
	Pawn engine.PlayerPawn
}

// EntityCreatedPayload fires when the engine creates a weapon entity that
// already has an owning pawn.
type EntityCreatedPayload struct {
	Pawn   engine.PlayerPawn
	Weapon engine.WeaponEntity
}

// PlayerKillPayload fires on a kill, attacker side.
type PlayerKillPayload struct {
	Attacker     engine.PlayerPawn
	WeaponItemID uint64
	VictimIsBot  bool
}

// PlayerDisconnectedPayload fires when a player leaves the server.
type PlayerDisconnectedPayload struct {
	SteamID uint64
}

// Event constructors

func NewPlayerConnectedEvent(steamID uint64) Event {
	return Event{Version: EventSchemaVersion, Type: PlayerConnected, Payload: PlayerConnectedPayload{SteamID: steamID}}
}

func NewPlayerSpawnedEvent(pawn engine.PlayerPawn) Event {
	return Event{Version: EventSchemaVersion, Type: PlayerSpawned, Payload: PlayerSpawnedPayload{Pawn: pawn}}
}

func NewEntityCreatedEvent(pawn engine.PlayerPawn, weapon engine.WeaponEntity) Event {
	return Event{Version: EventSchemaVersion, Type: EntityCreated, Payload: EntityCreatedPayload{Pawn: pawn, Weapon: weapon}}
}

func NewPlayerKillEvent(attacker engine.PlayerPawn, weaponItemID uint64, victimIsBot bool) Event {
	return Event{Version: EventSchemaVersion, Type: PlayerKill, Payload: PlayerKillPayload{
		Attacker:     attacker,
		WeaponItemID: weaponItemID,
		VictimIsBot:  victimIsBot,
	}}
}

func NewPlayerDisconnectedEvent(steamID uint64) Event {
	return Event{Version: EventSchemaVersion, Type: PlayerDisconnected, Payload: PlayerDisconnectedPayload{SteamID: steamID}}
}

func NewRoundStartEvent() Event {
	return Event{Version: EventSchemaVersion, Type: RoundStart}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously
// on the caller's goroutine; for engine events that goroutine is the
// simulation thread, which is exactly what live-object mutation needs.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
