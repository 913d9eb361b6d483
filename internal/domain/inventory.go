package domain

import (
	"encoding/json"
	"strconv"
)

// Team identifies one of the two playable sides, using the engine's
// team numbers.
type Team int

const (
	TeamT  Team = 2
	TeamCT Team = 3
)

// Playable reports whether the team is one of the two sides that can carry
// cosmetic overrides. Spectators and the unassigned slot never do.
func (t Team) Playable() bool {
	return t == TeamT || t == TeamCT
}

// Opposite returns the other playable team. Only meaningful for playable
// teams; used by the fallback lookup.
func (t Team) Opposite() Team {
	if t == TeamT {
		return TeamCT
	}
	return TeamT
}

// PlayerInventory is the per-player cosmetic loadout. Absence of a key means
// "no override for that slot": the engine's default item stays untouched.
//
// The attached wear cache survives inventory refreshes; see Store and
// WearCache for the continuity rules.
type PlayerInventory struct {
	Knives   map[Team]*WeaponEconItem
	Gloves   map[Team]*GloveItem
	Weapons  map[Team]map[int]*WeaponEconItem
	Agents   map[Team]*AgentItem
	Pin      *int
	MusicKit *MusicKitItem
	Graffiti *GraffitiItem

	WearCache *WearCache
}

// NewPlayerInventory returns an empty, all-absent inventory with a fresh
// wear cache. Callers never special-case "no inventory".
func NewPlayerInventory() *PlayerInventory {
	return &PlayerInventory{
		Knives:    make(map[Team]*WeaponEconItem),
		Gloves:    make(map[Team]*GloveItem),
		Weapons:   make(map[Team]map[int]*WeaponEconItem),
		Agents:    make(map[Team]*AgentItem),
		WearCache: NewWearCache(),
	}
}

// Knife returns the knife override for the given team, consulting the
// opposite team's entry when fallback is enabled.
func (inv *PlayerInventory) Knife(team Team, fallback bool) (*WeaponEconItem, bool) {
	if !team.Playable() {
		return nil, false
	}
	if item, ok := inv.Knives[team]; ok {
		return item, true
	}
	if fallback {
		if item, ok := inv.Knives[team.Opposite()]; ok {
			return item, true
		}
	}
	return nil, false
}

// Weapon returns the override for a weapon definition on the given team,
// consulting the opposite team's map when fallback is enabled.
func (inv *PlayerInventory) Weapon(team Team, def int, fallback bool) (*WeaponEconItem, bool) {
	if !team.Playable() {
		return nil, false
	}
	if item, ok := inv.Weapons[team][def]; ok {
		return item, true
	}
	if fallback {
		if item, ok := inv.Weapons[team.Opposite()][def]; ok {
			return item, true
		}
	}
	return nil, false
}

// Glove returns the glove override for the given team.
func (inv *PlayerInventory) Glove(team Team, fallback bool) (*GloveItem, bool) {
	if !team.Playable() {
		return nil, false
	}
	if item, ok := inv.Gloves[team]; ok {
		return item, true
	}
	if fallback {
		if item, ok := inv.Gloves[team.Opposite()]; ok {
			return item, true
		}
	}
	return nil, false
}

// Agent returns the agent override for the given team. Agent lookups never
// fall back: a CT model on a T player breaks the team silhouette.
func (inv *PlayerInventory) Agent(team Team) (*AgentItem, bool) {
	if !team.Playable() {
		return nil, false
	}
	item, ok := inv.Agents[team]
	return item, ok
}

// inventoryPayload mirrors the backend's equipped-inventory wire schema.
// Team-scoped maps are keyed by team number, weapon maps by definition id,
// both as JSON strings.
type inventoryPayload struct {
	Knives    map[string]*WeaponEconItem `json:"knives"`
	Gloves    map[string]*GloveItem      `json:"gloves"`
	TWeapons  map[string]*WeaponEconItem `json:"tWeapons"`
	CTWeapons map[string]*WeaponEconItem `json:"ctWeapons"`
	Agents    map[string]*AgentItem      `json:"agents"`
	Pin       *int                       `json:"pin"`
	MusicKit  *MusicKitItem              `json:"musicKit"`
	Graffiti  *GraffitiItem              `json:"graffiti"`
}

// UnmarshalJSON decodes the backend wire schema. Keys that do not parse as
// integers or name a non-playable team are dropped rather than rejected, so
// one malformed entry cannot discard a whole loadout. Null items are dropped
// the same way: every pointer stored here is non-nil.
func (inv *PlayerInventory) UnmarshalJSON(data []byte) error {
	var payload inventoryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	fresh := NewPlayerInventory()
	for key, item := range payload.Knives {
		if team, ok := parseTeamKey(key); ok && item != nil {
			fresh.Knives[team] = item
		}
	}
	for key, item := range payload.Gloves {
		if team, ok := parseTeamKey(key); ok && item != nil {
			fresh.Gloves[team] = item
		}
	}
	fresh.Weapons[TeamT] = parseWeaponMap(payload.TWeapons)
	fresh.Weapons[TeamCT] = parseWeaponMap(payload.CTWeapons)
	for key, item := range payload.Agents {
		if team, ok := parseTeamKey(key); ok && item != nil {
			fresh.Agents[team] = item
		}
	}
	fresh.Pin = payload.Pin
	fresh.MusicKit = payload.MusicKit
	fresh.Graffiti = payload.Graffiti

	*inv = *fresh
	return nil
}

func parseTeamKey(key string) (Team, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	team := Team(n)
	return team, team.Playable()
}

func parseWeaponMap(raw map[string]*WeaponEconItem) map[int]*WeaponEconItem {
	out := make(map[int]*WeaponEconItem, len(raw))
	for key, item := range raw {
		def, err := strconv.Atoi(key)
		if err != nil || item == nil {
			continue
		}
		out[def] = item
	}
	return out
}
