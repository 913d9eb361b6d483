// Package apply transforms live engine objects to reflect the cosmetic items
// a player has equipped. Everything here runs on the simulation thread; the
// only concurrency-safe piece is the synthetic item id allocator.
package apply

import (
	"strings"
	"sync/atomic"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/metrics"
	"github.com/strafemod/paintkit/internal/worker"
)

// SyntheticIDFloor marks the boundary between engine-default item ids and the
// ids this plugin hands out. An item id above the floor means the object was
// already customized; the floor doubles as the idempotence guard.
const SyntheticIDFloor uint64 = 1 << 16

// Quality tags written onto customized items.
const (
	QualityKnife    = 3
	QualityUnique   = 4
	QualityStatTrak = 9
)

// Config holds the behavior toggles the application engine consults.
type Config struct {
	// FallbackTeam enables opposite-team lookup when a slot has no entry
	// for the player's own team.
	FallbackTeam bool
	// WearCacheFix routes wear values through the de-duplication cache to
	// defeat the client's material memoization.
	WearCacheFix bool
	// AgentsEnabled gates agent model application (minimum-models mode).
	AgentsEnabled bool
	// IgnoreBotKills drops StatTrak increments for bot victims.
	IgnoreBotKills bool
}

// JobQueue is the fire-and-forget sender for backend reports.
type JobQueue interface {
	TryEnqueue(job worker.Job) bool
}

// Engine applies cosmetic items to live objects.
type Engine struct {
	cfg      Config
	lookup   *equipment.Lookup
	reporter worker.StatTrakReporter
	jobs     JobQueue

	nextID atomic.Uint64
}

// NewEngine creates an application engine. reporter and jobs may be nil, in
// which case StatTrak increments are applied locally but never reported.
func NewEngine(cfg Config, lookup *equipment.Lookup, reporter worker.StatTrakReporter, jobs JobQueue) *Engine {
	e := &Engine{cfg: cfg, lookup: lookup, reporter: reporter, jobs: jobs}
	e.nextID.Store(SyntheticIDFloor)
	return e
}

// IsKnifeClass reports whether an entity class name is a knife. Bayonets do
// not carry "knife" in their class name.
func IsKnifeClass(class string) bool {
	return strings.Contains(class, "knife") || strings.Contains(class, "bayonet")
}

// IsSprayClass reports whether an entity class name is the graffiti spray.
func IsSprayClass(class string) bool {
	return class == "weapon_spray"
}

// allocItemID hands out the next synthetic item id, always above the floor.
func (e *Engine) allocItemID() uint64 {
	return e.nextID.Add(1)
}

// resolveWeapon picks the equipped item for a weapon object: knives by team,
// everything else by (team, definition).
func (e *Engine) resolveWeapon(inv *domain.PlayerInventory, team domain.Team, class string, def int) (*domain.WeaponEconItem, bool) {
	if IsKnifeClass(class) {
		return inv.Knife(team, e.cfg.FallbackTeam)
	}
	return inv.Weapon(team, def, e.cfg.FallbackTeam)
}

// ApplyWeapon customizes a freshly created weapon or knife for its owner.
// Objects already carrying a synthetic id are left alone; an object is
// customized at most once per spawn.
func (e *Engine) ApplyWeapon(pawn engine.PlayerPawn, weapon engine.WeaponEntity, inv *domain.PlayerInventory) {
	if !pawn.Valid() || !weapon.Valid() {
		return
	}
	if weapon.ItemID() >= SyntheticIDFloor {
		return
	}

	class := weapon.ClassName()
	isKnife := IsKnifeClass(class)
	item, ok := e.resolveWeapon(inv, pawn.Team(), class, int(weapon.DefIndex()))
	if !ok {
		return
	}

	if isKnife {
		if item.Def != int(weapon.DefIndex()) {
			weapon.ChangeSubclass(uint16(item.Def))
			weapon.SetDefIndex(uint16(item.Def))
		}
		weapon.SetQuality(QualityKnife)
	} else if item.Tracked() {
		weapon.SetQuality(QualityStatTrak)
	} else {
		weapon.SetQuality(QualityUnique)
	}

	id := e.allocItemID()
	weapon.SetItemIDParts(uint32(id), uint32(id>>32))

	wear := item.Wear
	if e.cfg.WearCacheFix {
		wear = inv.WearCache.ResolveWear(item)
		if wear != item.Wear {
			metrics.WearCollisions.Inc()
		}
	}
	writePaint(weapon, item.Paint, item.Seed, wear)

	if item.Tracked() {
		writeStatTrak(weapon, item.StatTrak)
	}

	if !isKnife {
		writeStickers(weapon, item.Stickers)
		e.applyMeshMask(pawn, weapon, item.Legacy)
	}

	if isKnife {
		metrics.ItemsApplied.WithLabelValues(metrics.KindKnife).Inc()
	} else {
		metrics.ItemsApplied.WithLabelValues(metrics.KindWeapon).Inc()
	}
}

// writePaint sets paint, seed and wear on the fallback fields and duplicates
// them into both attribute containers. The containers must agree or the
// client renders a stale value.
func writePaint(weapon engine.WeaponEntity, paint, seed int, wear float64) {
	weapon.SetFallbackPaintKit(paint)
	weapon.SetFallbackSeed(seed)
	weapon.SetFallbackWear(float32(wear))

	for _, attrs := range []engine.AttributeWriter{weapon.Attributes(), weapon.NetworkedAttributes()} {
		attrs.SetFloat(engine.AttrTexturePrefab, float32(paint))
		attrs.SetFloat(engine.AttrTextureSeed, float32(seed))
		attrs.SetFloat(engine.AttrTextureWear, float32(wear))
	}
}

// writeStatTrak writes the kill counter. The attribute storage is float-typed
// but the counter is an integer attribute: the bit pattern is reinterpreted,
// never numerically converted.
func writeStatTrak(weapon engine.WeaponEntity, count int) {
	weapon.SetFallbackStatTrak(int32(count))
	encoded := engine.Uint32Float(uint32(count))
	weapon.Attributes().SetFloat(engine.AttrKillEater, encoded)
	weapon.NetworkedAttributes().SetFloat(engine.AttrKillEater, encoded)
}

// writeStickers writes the sticker slots into the networked container only;
// sticker attributes are not mirrored live.
func writeStickers(weapon engine.WeaponEntity, stickers []domain.StickerItem) {
	attrs := weapon.NetworkedAttributes()
	for _, s := range stickers {
		if s.Slot < 0 || s.Slot >= domain.MaxStickerSlots {
			continue
		}
		attrs.SetFloat(engine.StickerAttr(s.Slot, engine.StickerFieldID), engine.Uint32Float(uint32(s.Def)))
		attrs.SetFloat(engine.StickerAttr(s.Slot, engine.StickerFieldWear), float32(s.Wear))
		if s.Rotation != nil {
			attrs.SetFloat(engine.StickerAttr(s.Slot, engine.StickerFieldRotation), float32(*s.Rotation))
		}
		if s.OffsetX != nil {
			attrs.SetFloat(engine.StickerAttr(s.Slot, engine.StickerFieldOffsetX), float32(*s.OffsetX))
		}
		if s.OffsetY != nil {
			attrs.SetFloat(engine.StickerAttr(s.Slot, engine.StickerFieldOffsetY), float32(*s.OffsetY))
		}
	}
}

// applyMeshMask selects the legacy or current mesh group and propagates the
// mask to the first-person view-model when it is showing this same weapon.
func (e *Engine) applyMeshMask(pawn engine.PlayerPawn, weapon engine.WeaponEntity, legacy bool) {
	mask := engine.MeshGroupMaskCurrent
	if legacy {
		mask = engine.MeshGroupMaskLegacy
	}
	weapon.SetMeshGroupMask(mask)

	vm, ok := pawn.ViewModel()
	if !ok || !vm.Valid() {
		return
	}
	current, ok := vm.Weapon()
	if !ok || !current.Valid() || current.ItemID() != weapon.ItemID() {
		return
	}
	vm.SetMeshGroupMask(mask)
	vm.MarkMeshDirty()
}
