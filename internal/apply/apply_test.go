package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/engine/enginetest"
	"github.com/strafemod/paintkit/internal/equipment"
)

const (
	akDef  = 7
	awpDef = 9
)

func newEngine(cfg Config) *Engine {
	return NewEngine(cfg, equipment.NewEmptyLookup(), nil, nil)
}

func invWithWeapon(team domain.Team, item *domain.WeaponEconItem) *domain.PlayerInventory {
	inv := domain.NewPlayerInventory()
	inv.Weapons[team] = map[int]*domain.WeaponEconItem{item.Def: item}
	return inv
}

func TestIsKnifeClass(t *testing.T) {
	assert.True(t, IsKnifeClass("weapon_knife_m9_bayonet"))
	assert.True(t, IsKnifeClass("weapon_bayonet"))
	assert.False(t, IsKnifeClass("weapon_ak47"))
	assert.False(t, IsKnifeClass("weapon_spray"))
}

func TestApplyWeapon_FreshRifle(t *testing.T) {
	e := newEngine(Config{WearCacheFix: true})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, Seed: 12, Wear: 0.15, StatTrak: domain.StatTrakUntracked,
	})

	e.ApplyWeapon(pawn, weapon, inv)

	assert.Equal(t, 3, weapon.Paint)
	assert.Equal(t, 12, weapon.Seed)
	assert.InDelta(t, 0.15, float64(weapon.Wear), 1e-6)
	assert.Equal(t, QualityUnique, weapon.Quality)
	assert.Greater(t, weapon.ItemID(), SyntheticIDFloor)

	for _, attrs := range []*enginetest.FakeAttributes{weapon.Live, weapon.Networked} {
		assert.Equal(t, float32(3), attrs.Values[engine.AttrTexturePrefab])
		assert.Equal(t, float32(12), attrs.Values[engine.AttrTextureSeed])
		assert.InDelta(t, 0.15, float64(attrs.Values[engine.AttrTextureWear]), 1e-6)
	}
}

func TestApplyWeapon_SecondObjectSameConfigReusesWear(t *testing.T) {
	// The wear cache keys on (definition, sticker signature), not object
	// identity: a second creation with the identical item must get the
	// same wear back.
	e := newEngine(Config{WearCacheFix: true})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, Seed: 12, Wear: 0.15, StatTrak: domain.StatTrakUntracked,
	})

	first := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	second := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	e.ApplyWeapon(pawn, first, inv)
	e.ApplyWeapon(pawn, second, inv)

	assert.Equal(t, first.Wear, second.Wear)
	assert.NotEqual(t, first.ItemID(), second.ItemID(), "synthetic ids stay unique")
}

func TestApplyWeapon_IdempotentPerObject(t *testing.T) {
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, StatTrak: domain.StatTrakUntracked,
	})

	e.ApplyWeapon(pawn, weapon, inv)
	id := weapon.ItemID()
	e.ApplyWeapon(pawn, weapon, inv)

	assert.Equal(t, id, weapon.ItemID(), "an object is customized at most once")
}

func TestApplyWeapon_NoOverrideLeavesObjectUntouched(t *testing.T) {
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamCT)
	weapon := enginetest.NewFakeWeapon("weapon_awp", awpDef)

	e.ApplyWeapon(pawn, weapon, domain.NewPlayerInventory())

	assert.Zero(t, weapon.ItemID())
	assert.Zero(t, weapon.Paint)
	assert.Empty(t, weapon.Live.Values)
}

func TestApplyWeapon_FallbackTeamLookup(t *testing.T) {
	item := &domain.WeaponEconItem{Def: akDef, Paint: 44, StatTrak: domain.StatTrakUntracked}
	inv := invWithWeapon(domain.TeamT, item)
	pawn := enginetest.NewFakePawn(1, domain.TeamCT)

	t.Run("disabled", func(t *testing.T) {
		e := newEngine(Config{FallbackTeam: false})
		weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
		e.ApplyWeapon(pawn, weapon, inv)
		assert.Zero(t, weapon.ItemID())
	})

	t.Run("enabled", func(t *testing.T) {
		e := newEngine(Config{FallbackTeam: true})
		weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
		e.ApplyWeapon(pawn, weapon, inv)
		assert.Equal(t, 44, weapon.Paint)
	})
}

func TestApplyWeapon_KnifeSubclassChange(t *testing.T) {
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_knife", 42)
	inv := domain.NewPlayerInventory()
	inv.Knives[domain.TeamT] = &domain.WeaponEconItem{
		Def: 500, Paint: 38, StatTrak: domain.StatTrakUntracked,
	}

	e.ApplyWeapon(pawn, weapon, inv)

	require.Len(t, weapon.Subclass, 1)
	assert.Equal(t, uint16(500), weapon.Subclass[0])
	assert.Equal(t, uint16(500), weapon.DefIndex())
	assert.Equal(t, QualityKnife, weapon.Quality)
}

func TestApplyWeapon_KnifeSameDefSkipsSubclass(t *testing.T) {
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_bayonet", 500)
	inv := domain.NewPlayerInventory()
	inv.Knives[domain.TeamT] = &domain.WeaponEconItem{
		Def: 500, Paint: 38, StatTrak: domain.StatTrakUntracked,
	}

	e.ApplyWeapon(pawn, weapon, inv)

	assert.Empty(t, weapon.Subclass)
	assert.Equal(t, QualityKnife, weapon.Quality)
}

func TestApplyWeapon_StatTrakBitPattern(t *testing.T) {
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, StatTrak: 1337,
	})

	e.ApplyWeapon(pawn, weapon, inv)

	assert.Equal(t, QualityStatTrak, weapon.Quality)
	assert.Equal(t, int32(1337), weapon.StatTrak)
	want := engine.Uint32Float(1337)
	assert.Equal(t, want, weapon.Live.Values[engine.AttrKillEater])
	assert.Equal(t, want, weapon.Networked.Values[engine.AttrKillEater])
}

func TestApplyWeapon_StickersNetworkedOnly(t *testing.T) {
	rotation := 45.0
	e := newEngine(Config{})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, StatTrak: domain.StatTrakUntracked,
		Stickers: []domain.StickerItem{
			{Def: 2020, Slot: 0, Wear: 0.2, Rotation: &rotation},
			{Def: 9, Slot: 7}, // out of range, dropped
		},
	})

	e.ApplyWeapon(pawn, weapon, inv)

	idAttr := engine.StickerAttr(0, engine.StickerFieldID)
	assert.Equal(t, engine.Uint32Float(2020), weapon.Networked.Values[idAttr])
	assert.InDelta(t, 0.2, float64(weapon.Networked.Values[engine.StickerAttr(0, engine.StickerFieldWear)]), 1e-6)
	assert.Equal(t, float32(45), weapon.Networked.Values[engine.StickerAttr(0, engine.StickerFieldRotation)])

	_, live := weapon.Live.Values[idAttr]
	assert.False(t, live, "sticker attributes are never mirrored live")
	_, dropped := weapon.Networked.Values[engine.StickerAttr(7, engine.StickerFieldID)]
	assert.False(t, dropped)
}

func TestApplyWeapon_LegacyMaskPropagatesToViewModel(t *testing.T) {
	e := newEngine(Config{})
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	vm := &enginetest.FakeViewModel{Active: weapon, Mask: engine.MeshGroupMaskCurrent}
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	pawn.View = vm
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 44, StatTrak: domain.StatTrakUntracked, Legacy: true,
	})

	e.ApplyWeapon(pawn, weapon, inv)

	assert.Equal(t, engine.MeshGroupMaskLegacy, weapon.Mask)
	assert.Equal(t, engine.MeshGroupMaskLegacy, vm.Mask)
	assert.Equal(t, 1, vm.DirtyCount)
}

func TestApplyWeapon_MaskNotPropagatedToOtherWeapon(t *testing.T) {
	e := newEngine(Config{})
	weapon := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	other := enginetest.NewFakeWeapon("weapon_awp", awpDef)
	other.SetItemIDParts(99, 99)
	vm := &enginetest.FakeViewModel{Active: other, Mask: engine.MeshGroupMaskCurrent}
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	pawn.View = vm
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 44, StatTrak: domain.StatTrakUntracked, Legacy: true,
	})

	e.ApplyWeapon(pawn, weapon, inv)

	assert.Equal(t, engine.MeshGroupMaskCurrent, vm.Mask)
	assert.Zero(t, vm.DirtyCount)
}

func TestApplyWeapon_WearCacheFixDisabledUsesRawWear(t *testing.T) {
	e := newEngine(Config{WearCacheFix: false})
	pawn := enginetest.NewFakePawn(1, domain.TeamT)
	inv := invWithWeapon(domain.TeamT, &domain.WeaponEconItem{
		Def: akDef, Paint: 3, Wear: 0.25, StatTrak: domain.StatTrakUntracked,
	})

	first := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	e.ApplyWeapon(pawn, first, inv)
	assert.InDelta(t, 0.25, float64(first.Wear), 1e-6)

	// A conflicting claim on 0.25 would bump the wear if the cache were
	// consulted; with the fix disabled the raw wear is used regardless.
	inv.WearCache.ResolveWear(&domain.WeaponEconItem{Def: awpDef, Paint: 3, Wear: 0.25})
	second := enginetest.NewFakeWeapon("weapon_ak47", akDef)
	e.ApplyWeapon(pawn, second, inv)
	assert.InDelta(t, 0.25, float64(second.Wear), 1e-6)
}
