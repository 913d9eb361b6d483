package apply

import (
	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/logger"
	"github.com/strafemod/paintkit/internal/metrics"
)

// InventorySource is the read side of the inventory store the corrector
// consults every tick.
type InventorySource interface {
	Get(steamID uint64) *domain.PlayerInventory
}

// Corrector re-asserts view-model state once per simulation tick. A single
// assignment at weapon creation is not enough: the engine resets the mesh
// mask on its own, so painted weapons need the mask pushed back every tick.
type Corrector struct {
	cfg     Config
	lookup  *equipment.Lookup
	store   InventorySource
	runtime engine.Runtime
}

// NewCorrector creates a tick corrector.
func NewCorrector(cfg Config, lookup *equipment.Lookup, store InventorySource, runtime engine.Runtime) *Corrector {
	return &Corrector{cfg: cfg, lookup: lookup, store: store, runtime: runtime}
}

// Run processes every connected human player. Called once per tick on the
// simulation thread.
func (c *Corrector) Run() {
	for _, pawn := range c.runtime.Players() {
		c.correct(pawn)
	}
}

// correct handles a single player. Faults are contained per player so one
// bad pawn cannot abort the tick for everyone else.
func (c *Corrector) correct(pawn engine.PlayerPawn) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("view-model correction panicked", "panic", r)
		}
	}()

	if !pawn.Valid() || pawn.IsBot() {
		return
	}
	inv := c.store.Get(pawn.SteamID())

	// The engine can reset the music kit field mid-round; push it back every
	// tick, like the mesh mask below.
	if inv.MusicKit != nil {
		pawn.SetMusicKit(inv.MusicKit.Def)
	}

	vm, ok := pawn.ViewModel()
	if !ok || !vm.Valid() {
		return
	}
	weapon, ok := vm.Weapon()
	if !ok || !weapon.Valid() {
		return
	}

	if IsKnifeClass(weapon.ClassName()) {
		c.correctKnife(pawn, vm, inv)
		return
	}

	item, ok := inv.Weapon(pawn.Team(), int(weapon.DefIndex()), c.cfg.FallbackTeam)
	if !ok {
		return
	}
	mask := engine.MeshGroupMaskCurrent
	if item.Legacy {
		mask = engine.MeshGroupMaskLegacy
	}
	changed := vm.MeshGroupMask() != mask
	vm.SetMeshGroupMask(mask)
	if changed {
		vm.MarkMeshDirty()
		metrics.TickCorrections.Inc()
	}
}

// correctKnife forces the view-model's model path on platforms that cannot
// hot-swap knife subclasses. Deploy-animation fidelity is lost; that is the
// known trade-off of the forced path.
func (c *Corrector) correctKnife(pawn engine.PlayerPawn, vm engine.ViewModel, inv *domain.PlayerInventory) {
	if c.runtime.CanSwapSubclass() {
		return
	}
	item, ok := inv.Knife(pawn.Team(), c.cfg.FallbackTeam)
	if !ok {
		return
	}
	model, ok := c.lookup.Model(item.Def)
	if !ok {
		return
	}
	vm.SetModel(model)
}
