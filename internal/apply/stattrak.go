package apply

import (
	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/engine"
	"github.com/strafemod/paintkit/internal/worker"
)

// IncrementStatTrak handles a kill by the attacker. The counter is only
// touched when the active weapon is a synthetic item, matches the weapon
// reported by the kill event, carries a tracked counter, and is below the
// cap. The backend report is queued fire-and-forget; a full queue drops the
// report, which is acceptable for advisory telemetry.
func (e *Engine) IncrementStatTrak(attacker engine.PlayerPawn, weaponItemID uint64, victimIsBot bool, inv *domain.PlayerInventory) {
	if victimIsBot && e.cfg.IgnoreBotKills {
		return
	}
	if !attacker.Valid() {
		return
	}

	weapon, ok := attacker.ActiveWeapon()
	if !ok || !weapon.Valid() {
		return
	}
	if weapon.ItemID() < SyntheticIDFloor {
		return
	}
	if weaponItemID != 0 && weapon.ItemID() != weaponItemID {
		return
	}

	item, ok := e.resolveWeapon(inv, attacker.Team(), weapon.ClassName(), int(weapon.DefIndex()))
	if !ok || !item.Tracked() {
		return
	}
	if item.StatTrak >= domain.StatTrakMax {
		return
	}

	item.StatTrak++
	writeStatTrak(weapon, item.StatTrak)

	if e.reporter == nil || e.jobs == nil {
		return
	}
	e.jobs.TryEnqueue(worker.StatTrakReportJob{
		Client: e.reporter,
		UID:    item.UID,
		UserID: attacker.SteamID(),
	})
}
