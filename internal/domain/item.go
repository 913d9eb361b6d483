package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatTrakUntracked is the sentinel for weapons without a kill counter.
const StatTrakUntracked = -1

// StatTrakMax is the highest value a kill counter may reach. Increments at
// the cap are dropped and not reported to the backend.
const StatTrakMax = 999999

// MaxStickerSlots is the number of sticker positions a weapon carries.
const MaxStickerSlots = 5

// MaxAgentPatches is the number of patch positions an agent model carries.
const MaxAgentPatches = 5

// StickerItem is a single sticker applied to a weapon slot.
type StickerItem struct {
	Def      int      `json:"def"`
	Slot     int      `json:"slot"`
	Wear     float64  `json:"wear"`
	Rotation *float64 `json:"rotation,omitempty"`
	OffsetX  *float64 `json:"offsetX,omitempty"`
	OffsetY  *float64 `json:"offsetY,omitempty"`
}

// Equal reports structural equality, including the optional fields.
func (s StickerItem) Equal(o StickerItem) bool {
	return s.Def == o.Def &&
		s.Slot == o.Slot &&
		s.Wear == o.Wear &&
		floatPtrEqual(s.Rotation, o.Rotation) &&
		floatPtrEqual(s.OffsetX, o.OffsetX) &&
		floatPtrEqual(s.OffsetY, o.OffsetY)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// WeaponEconItem is an emulated economy item for a weapon or knife.
// Items are superseded wholesale by a newer fetch; only the StatTrak counter
// is mutated in place between refreshes.
type WeaponEconItem struct {
	Def      int           `json:"def"`
	Paint    int           `json:"paint"`
	Seed     int           `json:"seed"`
	Wear     float64       `json:"wear"`
	Nametag  string        `json:"nametag"`
	StatTrak int           `json:"stattrak"`
	UID      int           `json:"uid"`
	Stickers []StickerItem `json:"stickers"`

	// Legacy selects the older mesh group. It is not part of the wire
	// payload; it is resolved against the equipment catalog after decode.
	Legacy bool `json:"-"`
}

// UnmarshalJSON defaults an absent stattrak field to the untracked sentinel.
func (w *WeaponEconItem) UnmarshalJSON(data []byte) error {
	type alias WeaponEconItem
	tmp := struct {
		*alias
		StatTrak *int `json:"stattrak"`
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	if tmp.StatTrak != nil {
		w.StatTrak = *tmp.StatTrak
	} else {
		w.StatTrak = StatTrakUntracked
	}
	return nil
}

// Tracked reports whether the item carries a StatTrak counter.
func (w *WeaponEconItem) Tracked() bool {
	return w.StatTrak > StatTrakUntracked
}

// Equal reports structural equality. Used to detect whether a slot's item
// changed across inventory refreshes.
func (w *WeaponEconItem) Equal(o *WeaponEconItem) bool {
	if w == nil || o == nil {
		return w == o
	}
	if w.Def != o.Def || w.Paint != o.Paint || w.Seed != o.Seed ||
		w.Wear != o.Wear || w.Nametag != o.Nametag ||
		w.StatTrak != o.StatTrak || w.UID != o.UID ||
		w.Legacy != o.Legacy || len(w.Stickers) != len(o.Stickers) {
		return false
	}
	for i := range w.Stickers {
		if !w.Stickers[i].Equal(o.Stickers[i]) {
			return false
		}
	}
	return true
}

// StickerSignature is a canonical encoding of the sticker configuration,
// used as part of the wear de-duplication cache key.
func (w *WeaponEconItem) StickerSignature() string {
	if len(w.Stickers) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range w.Stickers {
		fmt.Fprintf(&b, "%d:%d:%g", s.Slot, s.Def, s.Wear)
		if s.Rotation != nil {
			fmt.Fprintf(&b, ":r%g", *s.Rotation)
		}
		if s.OffsetX != nil {
			fmt.Fprintf(&b, ":x%g", *s.OffsetX)
		}
		if s.OffsetY != nil {
			fmt.Fprintf(&b, ":y%g", *s.OffsetY)
		}
		b.WriteByte(';')
	}
	return b.String()
}

// GloveItem is an emulated economy item for gloves. No stickers, no StatTrak.
type GloveItem struct {
	Def   int     `json:"def"`
	Paint int     `json:"paint"`
	Seed  int     `json:"seed"`
	Wear  float64 `json:"wear"`
}

// AgentItem replaces the player's visible model and voice parameters.
type AgentItem struct {
	Model         string `json:"model"`
	Patches       []int  `json:"patches"`
	VoiceFallback bool   `json:"voiceFallback"`
	VoicePrefix   string `json:"voicePrefix"`
	VoiceFemale   bool   `json:"voiceFemale"`
}

// MusicKitItem is an equipped music kit, reapplied on round start.
type MusicKitItem struct {
	Def      int `json:"def"`
	StatTrak int `json:"stattrak"`
	UID      int `json:"uid"`
}

// GraffitiItem is an equipped spray with an optional tint.
type GraffitiItem struct {
	Def  int `json:"def"`
	Tint int `json:"tint"`
}
