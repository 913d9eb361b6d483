// Package engine defines the narrow surface of the host game engine the
// plugin talks to. The engine itself (entity creation, event dispatch,
// schema access) lives outside this module; everything here is an interface
// implemented by the host bridge, plus small helpers for the engine's
// storage formats.
package engine

import (
	"fmt"

	"github.com/strafemod/paintkit/internal/domain"
)

// Attribute names the plugin writes. The engine's attribute containers are
// keyed by these exact strings; nothing else is ever written.
const (
	AttrTexturePrefab = "set item texture prefab"
	AttrTextureSeed   = "set item texture seed"
	AttrTextureWear   = "set item texture wear"
	AttrKillEater     = "kill eater"
	AttrSprayTintID   = "spray tint id"
)

// Sticker slot attribute fields.
const (
	StickerFieldID       = "id"
	StickerFieldWear     = "wear"
	StickerFieldRotation = "rotation"
	StickerFieldOffsetX  = "offset x"
	StickerFieldOffsetY  = "offset y"
)

// StickerAttr returns the attribute name for a sticker slot field, e.g.
// "sticker slot 0 id".
func StickerAttr(slot int, field string) string {
	return fmt.Sprintf("sticker slot %d %s", slot, field)
}

// Mesh-group mask values. The mask selects which mesh group renders; legacy
// paints use the older variant.
const (
	MeshGroupMaskCurrent uint64 = 1
	MeshGroupMaskLegacy  uint64 = 2
)

// AttributeWriter sets engine attributes by name on one container. Every
// entity carries two containers, a live one and a networked one, and both
// must agree or the client renders a stale value.
type AttributeWriter interface {
	SetFloat(name string, value float32)
}

// WeaponEntity is a live weapon or glove object. Accessors may stop being
// valid at any time; callers re-check Valid after every cross-thread hop.
type WeaponEntity interface {
	Valid() bool
	ClassName() string

	DefIndex() uint16
	SetDefIndex(def uint16)
	// ChangeSubclass swaps the weapon to another knife subclass in place.
	ChangeSubclass(def uint16)

	SetQuality(quality int)
	ItemID() uint64
	SetItemIDParts(lo, hi uint32)

	SetFallbackPaintKit(paint int)
	SetFallbackSeed(seed int)
	SetFallbackWear(wear float32)
	SetFallbackStatTrak(count int32)

	Attributes() AttributeWriter
	NetworkedAttributes() AttributeWriter

	MeshGroupMask() uint64
	SetMeshGroupMask(mask uint64)
}

// ViewModel is the first-person weapon view of a player.
type ViewModel interface {
	Valid() bool
	Weapon() (WeaponEntity, bool)
	MeshGroupMask() uint64
	SetMeshGroupMask(mask uint64)
	SetModel(path string)
	// MarkMeshDirty flags the skeletal component for re-networking.
	MarkMeshDirty()
}

// PlayerPawn is a live player object.
type PlayerPawn interface {
	Valid() bool
	SteamID() uint64
	IsBot() bool
	Team() domain.Team

	ActiveWeapon() (WeaponEntity, bool)
	Gloves() (WeaponEntity, bool)
	ViewModel() (ViewModel, bool)

	SetModel(path string)
	SetAgentVoice(prefix string, fallback, female bool)
	SetAgentPatch(slot int, def int)
	// SetRank writes one slot of the pawn's fixed rank display array.
	SetRank(slot int, value int)
	SetMusicKit(def int)
}

// RankSlots is the size of the pawn's rank display array. Slot RankPinSlot
// carries the pin; the others are explicitly cleared.
const (
	RankSlots   = 6
	RankPinSlot = 5
)

// Runtime is the host-engine surface the plugin calls into directly.
type Runtime interface {
	// Players returns the currently connected human players.
	Players() []PlayerPawn
	// NextTick schedules fn onto the simulation thread. All live-object
	// mutation must go through here when called from another goroutine.
	NextTick(fn func())
	// CanSwapSubclass reports whether the platform supports knife
	// subclass hot-swapping. When it does not, the view-model corrector
	// forces the model path instead.
	CanSwapSubclass() bool
}
