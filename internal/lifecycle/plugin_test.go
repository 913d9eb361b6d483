package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strafemod/paintkit/internal/apply"
	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine/enginetest"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/event"
	"github.com/strafemod/paintkit/internal/inventory"
	"github.com/strafemod/paintkit/internal/refresh"
	"github.com/strafemod/paintkit/internal/worker"
)

const steamID = uint64(76561198000000001)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	invFunc func() *domain.PlayerInventory
}

func (f *fakeFetcher) FetchEquipped(ctx context.Context, id uint64) (*domain.PlayerInventory, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.invFunc != nil {
		return f.invFunc(), nil
	}
	return domain.NewPlayerInventory(), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeChat struct {
	mu   sync.Mutex
	msgs map[uint64][]string
}

func newFakeChat() *fakeChat {
	return &fakeChat{msgs: make(map[uint64][]string)}
}

func (c *fakeChat) Chat(steamID uint64, message string) {
	c.mu.Lock()
	c.msgs[steamID] = append(c.msgs[steamID], message)
	c.mu.Unlock()
}

func (c *fakeChat) last(steamID uint64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs[steamID]) == 0 {
		return ""
	}
	return c.msgs[steamID][len(c.msgs[steamID])-1]
}

type fakeSignIn struct {
	url string
	err error
}

func (f *fakeSignIn) LoginURL(ctx context.Context, userID uint64) (string, error) {
	return f.url, f.err
}

type fixture struct {
	plugin  *Plugin
	bus     *event.MemoryBus
	store   *inventory.Store
	runtime *enginetest.FakeRuntime
	fetcher *fakeFetcher
	coord   *refresh.Coordinator
	chat    *fakeChat
	pool    *worker.Pool
}

func newFixture(t *testing.T, cfg apply.Config, cooldown time.Duration) *fixture {
	t.Helper()
	lookup := equipment.NewEmptyLookup()
	store := inventory.NewStore()
	runtime := enginetest.NewFakeRuntime(true)
	fetcher := &fakeFetcher{}
	coord := refresh.NewCoordinator(store, fetcher, lookup, runtime,
		refresh.Options{Attempts: 1, Cooldown: cooldown})
	chat := newFakeChat()
	pool := worker.NewPool(1, 4)
	pool.Start()
	t.Cleanup(pool.Stop)

	bus := event.NewMemoryBus()
	plugin := New(Deps{
		Bus:       bus,
		Store:     store,
		Refresh:   coord,
		Applier:   apply.NewEngine(cfg, lookup, nil, nil),
		Corrector: apply.NewCorrector(cfg, lookup, store, runtime),
		Runtime:   runtime,
		Jobs:      pool,
		SignIn:    &fakeSignIn{url: "https://skins.example.com/?token=abc"},
		Chat:      chat,
	})
	return &fixture{
		plugin: plugin, bus: bus, store: store, runtime: runtime,
		fetcher: fetcher, coord: coord, chat: chat, pool: pool,
	}
}

func (f *fixture) publish(t *testing.T, e event.Event) {
	t.Helper()
	require.NoError(t, f.bus.Publish(context.Background(), e))
}

func TestPlugin_ConnectTriggersFetch(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)

	f.publish(t, event.NewPlayerConnectedEvent(steamID))

	require.Eventually(t, func() bool { return f.store.Has(steamID) },
		time.Second, time.Millisecond)
	assert.Equal(t, 1, f.fetcher.callCount())

	// Reconnect with a loaded inventory is a no-op, not a forced refresh.
	f.publish(t, event.NewPlayerConnectedEvent(steamID))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.fetcher.callCount())
}

func TestPlugin_SpawnAppliesLoadout(t *testing.T) {
	f := newFixture(t, apply.Config{AgentsEnabled: true}, 0)
	inv := domain.NewPlayerInventory()
	inv.Agents[domain.TeamT] = &domain.AgentItem{Model: "characters/models/tm_phoenix.vmdl"}
	inv.MusicKit = &domain.MusicKitItem{Def: 38}
	f.store.Put(steamID, inv)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	f.publish(t, event.NewPlayerSpawnedEvent(pawn))

	assert.Equal(t, "characters/models/tm_phoenix.vmdl", pawn.Model)
	assert.Equal(t, 38, pawn.MusicDef)
}

func TestPlugin_SpawnIgnoresBots(t *testing.T) {
	f := newFixture(t, apply.Config{AgentsEnabled: true}, 0)
	inv := domain.NewPlayerInventory()
	inv.Agents[domain.TeamT] = &domain.AgentItem{Model: "characters/models/tm_phoenix.vmdl"}
	f.store.Put(steamID, inv)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	pawn.Bot = true
	f.publish(t, event.NewPlayerSpawnedEvent(pawn))

	assert.Empty(t, pawn.Model)
}

func TestPlugin_EntityCreatedPaintsWeapon(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)
	inv := domain.NewPlayerInventory()
	inv.Weapons[domain.TeamT] = map[int]*domain.WeaponEconItem{
		7: {Def: 7, Paint: 3, Seed: 12, StatTrak: domain.StatTrakUntracked},
	}
	f.store.Put(steamID, inv)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", 7)
	f.publish(t, event.NewEntityCreatedEvent(pawn, weapon))

	assert.Equal(t, 3, weapon.Paint)
	assert.Greater(t, weapon.ItemID(), apply.SyntheticIDFloor)
}

func TestPlugin_EntityCreatedSprayGetsGraffiti(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)
	inv := domain.NewPlayerInventory()
	inv.Graffiti = &domain.GraffitiItem{Def: 1406, Tint: 2}
	f.store.Put(steamID, inv)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	spray := enginetest.NewFakeWeapon("weapon_spray", 0)
	f.publish(t, event.NewEntityCreatedEvent(pawn, spray))

	assert.Equal(t, 1406, spray.Paint)
}

func TestPlugin_KillIncrementsStatTrak(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)
	inv := domain.NewPlayerInventory()
	inv.Weapons[domain.TeamT] = map[int]*domain.WeaponEconItem{
		7: {Def: 7, Paint: 3, StatTrak: 5},
	}
	f.store.Put(steamID, inv)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", 7)
	pawn.Weapon = weapon
	f.publish(t, event.NewEntityCreatedEvent(pawn, weapon))

	f.publish(t, event.NewPlayerKillEvent(pawn, weapon.ItemID(), false))

	item, _ := f.store.Get(steamID).Weapon(domain.TeamT, 7, false)
	assert.Equal(t, 6, item.StatTrak)
}

func TestPlugin_DisconnectEvictsUnlessPinned(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)

	t.Run("regular entry evicted", func(t *testing.T) {
		f.store.Put(steamID, domain.NewPlayerInventory())
		f.publish(t, event.NewPlayerDisconnectedEvent(steamID))
		assert.False(t, f.store.Has(steamID))
	})

	t.Run("pinned entry survives", func(t *testing.T) {
		pinned := steamID + 1
		f.store.PutPinned(pinned, domain.NewPlayerInventory())
		f.publish(t, event.NewPlayerDisconnectedEvent(pinned))
		assert.True(t, f.store.Has(pinned))
	})
}

func TestPlugin_RoundStartReappliesMusic(t *testing.T) {
	f := newFixture(t, apply.Config{}, 0)
	inv := domain.NewPlayerInventory()
	inv.MusicKit = &domain.MusicKitItem{Def: 38}
	f.store.Put(steamID, inv)
	f.coord.RegisterMusic(steamID)

	pawn := enginetest.NewFakePawn(steamID, domain.TeamT)
	f.runtime.AddPlayer(pawn)
	other := enginetest.NewFakePawn(steamID+1, domain.TeamCT)
	f.runtime.AddPlayer(other)

	f.publish(t, event.NewRoundStartEvent())

	assert.Equal(t, 38, pawn.MusicDef)
	assert.Zero(t, other.MusicDef, "unregistered players are left alone")
}

func TestPlugin_RefreshCommandCooldown(t *testing.T) {
	f := newFixture(t, apply.Config{}, time.Minute)

	f.plugin.RefreshCommand(context.Background(), steamID)
	assert.Contains(t, f.chat.last(steamID), "Refreshing")
	require.Eventually(t, func() bool { return f.fetcher.callCount() == 1 },
		time.Second, time.Millisecond)

	// The completed fetch stamped the cooldown; the second command is gated.
	require.Eventually(t, func() bool {
		allowed, _ := f.coord.RefreshAllowed(steamID)
		return !allowed
	}, time.Second, time.Millisecond)

	f.plugin.RefreshCommand(context.Background(), steamID)
	assert.Contains(t, f.chat.last(steamID), "wait")
	assert.Equal(t, 1, f.fetcher.callCount())
}

func TestPlugin_SignInCommand(t *testing.T) {
	t.Run("delivers url", func(t *testing.T) {
		f := newFixture(t, apply.Config{}, 0)
		f.plugin.SignInCommand(context.Background(), steamID)

		require.Eventually(t, func() bool {
			return strings.Contains(f.chat.last(steamID), "token=abc")
		}, time.Second, time.Millisecond)
	})

	t.Run("failure prints login failed", func(t *testing.T) {
		f := newFixture(t, apply.Config{}, 0)
		f.plugin.deps.SignIn = &fakeSignIn{err: errors.New("boom")}
		f.plugin.SignInCommand(context.Background(), steamID)

		require.Eventually(t, func() bool {
			return strings.Contains(f.chat.last(steamID), "Login failed")
		}, time.Second, time.Millisecond)
	})
}
