// Package enginetest provides in-memory fakes of the engine collaborator
// interfaces for unit tests.
package enginetest

import (
	"sync"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
)

// FakeAttributes records SetFloat calls in a map.
type FakeAttributes struct {
	Values map[string]float32
}

func NewFakeAttributes() *FakeAttributes {
	return &FakeAttributes{Values: make(map[string]float32)}
}

func (a *FakeAttributes) SetFloat(name string, value float32) {
	a.Values[name] = value
}

// FakeWeapon implements engine.WeaponEntity.
type FakeWeapon struct {
	Invalid   bool
	Class     string
	Def       uint16
	Quality   int
	ItemIDLo  uint32
	ItemIDHi  uint32
	Paint     int
	Seed      int
	Wear      float32
	StatTrak  int32
	Mask      uint64
	Subclass  []uint16 // recorded ChangeSubclass calls
	Live      *FakeAttributes
	Networked *FakeAttributes
}

func NewFakeWeapon(class string, def uint16) *FakeWeapon {
	return &FakeWeapon{
		Class:     class,
		Def:       def,
		Mask:      engine.MeshGroupMaskCurrent,
		Live:      NewFakeAttributes(),
		Networked: NewFakeAttributes(),
	}
}

func (w *FakeWeapon) Valid() bool                  { return !w.Invalid }
func (w *FakeWeapon) ClassName() string            { return w.Class }
func (w *FakeWeapon) DefIndex() uint16             { return w.Def }
func (w *FakeWeapon) SetDefIndex(def uint16)       { w.Def = def }
func (w *FakeWeapon) ChangeSubclass(def uint16)    { w.Subclass = append(w.Subclass, def); w.Def = def }
func (w *FakeWeapon) SetQuality(q int)             { w.Quality = q }
func (w *FakeWeapon) ItemID() uint64               { return uint64(w.ItemIDHi)<<32 | uint64(w.ItemIDLo) }
func (w *FakeWeapon) SetItemIDParts(lo, hi uint32) { w.ItemIDLo, w.ItemIDHi = lo, hi }
func (w *FakeWeapon) SetFallbackPaintKit(p int)    { w.Paint = p }
func (w *FakeWeapon) SetFallbackSeed(s int)        { w.Seed = s }
func (w *FakeWeapon) SetFallbackWear(v float32)    { w.Wear = v }
func (w *FakeWeapon) SetFallbackStatTrak(c int32)  { w.StatTrak = c }

func (w *FakeWeapon) Attributes() engine.AttributeWriter          { return w.Live }
func (w *FakeWeapon) NetworkedAttributes() engine.AttributeWriter { return w.Networked }
func (w *FakeWeapon) MeshGroupMask() uint64                       { return w.Mask }
func (w *FakeWeapon) SetMeshGroupMask(mask uint64)                { w.Mask = mask }

// FakeViewModel implements engine.ViewModel.
type FakeViewModel struct {
	Invalid    bool
	Active     *FakeWeapon
	Mask       uint64
	Model      string
	DirtyCount int
}

func (v *FakeViewModel) Valid() bool { return !v.Invalid }

func (v *FakeViewModel) Weapon() (engine.WeaponEntity, bool) {
	if v.Active == nil {
		return nil, false
	}
	return v.Active, true
}

func (v *FakeViewModel) MeshGroupMask() uint64        { return v.Mask }
func (v *FakeViewModel) SetMeshGroupMask(mask uint64) { v.Mask = mask }
func (v *FakeViewModel) SetModel(path string)         { v.Model = path }
func (v *FakeViewModel) MarkMeshDirty()               { v.DirtyCount++ }

// FakePawn implements engine.PlayerPawn.
type FakePawn struct {
	Invalid  bool
	ID       uint64
	Bot      bool
	Side     domain.Team
	Weapon   *FakeWeapon
	Glove    *FakeWeapon
	View     *FakeViewModel
	Model    string
	Voice    string
	VoiceFB  bool
	VoiceFem bool
	Ranks    map[int]int
	Patches  map[int]int
	MusicDef int
}

func NewFakePawn(id uint64, team domain.Team) *FakePawn {
	return &FakePawn{ID: id, Side: team, Ranks: make(map[int]int), Patches: make(map[int]int)}
}

func (p *FakePawn) Valid() bool       { return !p.Invalid }
func (p *FakePawn) SteamID() uint64   { return p.ID }
func (p *FakePawn) IsBot() bool       { return p.Bot }
func (p *FakePawn) Team() domain.Team { return p.Side }

func (p *FakePawn) ActiveWeapon() (engine.WeaponEntity, bool) {
	if p.Weapon == nil {
		return nil, false
	}
	return p.Weapon, true
}

func (p *FakePawn) Gloves() (engine.WeaponEntity, bool) {
	if p.Glove == nil {
		return nil, false
	}
	return p.Glove, true
}

func (p *FakePawn) ViewModel() (engine.ViewModel, bool) {
	if p.View == nil {
		return nil, false
	}
	return p.View, true
}

func (p *FakePawn) SetModel(path string) { p.Model = path }

func (p *FakePawn) SetAgentVoice(prefix string, fallback, female bool) {
	p.Voice, p.VoiceFB, p.VoiceFem = prefix, fallback, female
}

func (p *FakePawn) SetAgentPatch(slot, def int) { p.Patches[slot] = def }

func (p *FakePawn) SetRank(slot, value int) { p.Ranks[slot] = value }
func (p *FakePawn) SetMusicKit(def int)     { p.MusicDef = def }

// FakeRuntime implements engine.Runtime. NextTick either runs inline
// (Immediate) or queues onto an engine.TickQueue for explicit draining.
type FakeRuntime struct {
	mu        sync.Mutex
	Pawns     []engine.PlayerPawn
	Queue     *engine.TickQueue
	Immediate bool
	Subclass  bool
}

func NewFakeRuntime(immediate bool) *FakeRuntime {
	return &FakeRuntime{Queue: engine.NewTickQueue(), Immediate: immediate, Subclass: true}
}

func (r *FakeRuntime) Players() []engine.PlayerPawn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.PlayerPawn(nil), r.Pawns...)
}

func (r *FakeRuntime) AddPlayer(p engine.PlayerPawn) {
	r.mu.Lock()
	r.Pawns = append(r.Pawns, p)
	r.mu.Unlock()
}

func (r *FakeRuntime) NextTick(fn func()) {
	if r.Immediate {
		fn()
		return
	}
	r.Queue.Push(fn)
}

func (r *FakeRuntime) CanSwapSubclass() bool { return r.Subclass }
