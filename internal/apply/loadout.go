package apply

import (
	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/metrics"
)

// ApplySpawn applies everything that belongs to a fresh pawn: gloves, agent
// model, music kit and pin. Weapons arrive separately through entity-created
// events.
func (e *Engine) ApplySpawn(pawn engine.PlayerPawn, inv *domain.PlayerInventory) {
	if !pawn.Valid() {
		return
	}
	e.ApplyGloves(pawn, inv)
	e.ApplyAgent(pawn, inv)
	e.ApplyMusicKit(pawn, inv)
	e.ApplyPin(pawn, inv)
}

// ApplyGloves customizes the pawn's glove entity. Gloves change definition
// rather than subclass, carry no stickers and no counter, and keep their raw
// wear: the client does not memoize glove materials the way it does weapons.
func (e *Engine) ApplyGloves(pawn engine.PlayerPawn, inv *domain.PlayerInventory) {
	item, ok := inv.Glove(pawn.Team(), e.cfg.FallbackTeam)
	if !ok {
		return
	}
	glove, ok := pawn.Gloves()
	if !ok || !glove.Valid() {
		return
	}
	if glove.ItemID() >= SyntheticIDFloor {
		return
	}

	if item.Def != int(glove.DefIndex()) {
		glove.SetDefIndex(uint16(item.Def))
	}
	glove.SetQuality(QualityUnique)

	id := e.allocItemID()
	glove.SetItemIDParts(uint32(id), uint32(id>>32))

	writePaint(glove, item.Paint, item.Seed, item.Wear)
	metrics.ItemsApplied.WithLabelValues(metrics.KindGlove).Inc()
}

// ApplyAgent replaces the pawn's visible model and voice. Skipped entirely in
// minimum-models mode; agent items never fall back across teams because a
// wrong-team silhouette is worse than a default model.
func (e *Engine) ApplyAgent(pawn engine.PlayerPawn, inv *domain.PlayerInventory) {
	if !e.cfg.AgentsEnabled {
		return
	}
	item, ok := inv.Agent(pawn.Team())
	if !ok || item.Model == "" {
		return
	}

	pawn.SetModel(item.Model)
	pawn.SetAgentVoice(item.VoicePrefix, item.VoiceFallback, item.VoiceFemale)
	for slot, def := range item.Patches {
		if slot >= domain.MaxAgentPatches {
			break
		}
		pawn.SetAgentPatch(slot, def)
	}
	metrics.ItemsApplied.WithLabelValues(metrics.KindAgent).Inc()
}

// ApplyMusicKit sets the pawn's music kit definition. Reapplied on round
// start and re-asserted by the tick corrector because the engine resets the
// field.
func (e *Engine) ApplyMusicKit(pawn engine.PlayerPawn, inv *domain.PlayerInventory) {
	if inv.MusicKit == nil {
		return
	}
	pawn.SetMusicKit(inv.MusicKit.Def)
	metrics.ItemsApplied.WithLabelValues(metrics.KindMusicKit).Inc()
}

// ApplyPin writes the pin into the rank display array. The array mirrors a
// fixed engine structure: the pin lives in the last slot and the other slots
// are explicitly zeroed, not left alone.
func (e *Engine) ApplyPin(pawn engine.PlayerPawn, inv *domain.PlayerInventory) {
	if inv.Pin == nil {
		return
	}
	for slot := 0; slot < engine.RankSlots; slot++ {
		if slot == engine.RankPinSlot {
			pawn.SetRank(slot, *inv.Pin)
		} else {
			pawn.SetRank(slot, 0)
		}
	}
	metrics.ItemsApplied.WithLabelValues(metrics.KindPin).Inc()
}

// ApplyGraffiti customizes a spray entity. The spray definition goes through
// the paint channel and the tint is an integer-typed attribute, so it is
// written bit-reinterpreted like the kill counter.
func (e *Engine) ApplyGraffiti(weapon engine.WeaponEntity, inv *domain.PlayerInventory) {
	if inv.Graffiti == nil {
		return
	}
	if !weapon.Valid() || weapon.ItemID() >= SyntheticIDFloor {
		return
	}

	id := e.allocItemID()
	weapon.SetItemIDParts(uint32(id), uint32(id>>32))

	weapon.SetFallbackPaintKit(inv.Graffiti.Def)
	tint := engine.Uint32Float(uint32(inv.Graffiti.Tint))
	for _, attrs := range []engine.AttributeWriter{weapon.Attributes(), weapon.NetworkedAttributes()} {
		attrs.SetFloat(engine.AttrTexturePrefab, float32(inv.Graffiti.Def))
		attrs.SetFloat(engine.AttrSprayTintID, tint)
	}
	metrics.ItemsApplied.WithLabelValues(metrics.KindGraffiti).Inc()
}
