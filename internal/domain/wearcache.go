package domain

// WearStep is the increment applied when probing for a free wear value.
const WearStep = 0.001

type wearEntry struct {
	def int
	sig string
}

// WearCache defeats the client's material memoization. The client caches
// rendered materials by (paint, wear); reapplying an item with an unchanged
// wear after a refresh can show a stale texture even though the stickers or
// the definition changed. The cache hands out a unique-enough wear per
// (paint, definition, sticker-configuration) tuple while returning the same
// wear when the identical configuration is reapplied.
//
// The cache is attached per-inventory and carried forward across refreshes.
// It is only touched from the simulation thread.
type WearCache struct {
	paints map[int]map[float64]wearEntry
}

// NewWearCache returns an empty cache.
func NewWearCache() *WearCache {
	return &WearCache{paints: make(map[int]map[float64]wearEntry)}
}

// ResolveWear returns the effective wear for the item. Starting from the
// item's stored wear, it probes upward in WearStep increments until it finds
// a value that is either unclaimed or already claimed by this exact
// (definition, sticker-signature) pair, then records the claim.
//
// Idempotent for an unchanged configuration; monotonically increasing under
// configuration churn on the same paint.
func (c *WearCache) ResolveWear(item *WeaponEconItem) float64 {
	byWear, ok := c.paints[item.Paint]
	if !ok {
		byWear = make(map[float64]wearEntry)
		c.paints[item.Paint] = byWear
	}

	sig := item.StickerSignature()
	base := item.Wear
	for step := 0; ; step++ {
		// Computed from the base each round to keep candidates exact
		// multiples of the step, free of accumulation drift.
		candidate := base + float64(step)*WearStep
		entry, claimed := byWear[candidate]
		if !claimed || (entry.def == item.Def && entry.sig == sig) {
			byWear[candidate] = wearEntry{def: item.Def, sig: sig}
			return candidate
		}
	}
}
