// Package inventory owns the per-player cosmetic loadouts. The store is
// shared between the simulation thread and background fetch completions, so
// every operation takes the lock; callers never hold references into the
// internal maps.
package inventory

import (
	"sync"

	"github.com/strafemod/paintkit/internal/domain"
)

// Store maps steam ids to loadouts. Pinned ids (operator-supplied loadouts
// from a local file) are immune to removal.
type Store struct {
	mu      sync.RWMutex
	entries map[uint64]*domain.PlayerInventory
	pinned  map[uint64]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[uint64]*domain.PlayerInventory),
		pinned:  make(map[uint64]struct{}),
	}
}

// Get returns the loadout for a player. When none is loaded it returns an
// empty, all-absent inventory so callers never special-case "no inventory".
func (s *Store) Get(steamID uint64) *domain.PlayerInventory {
	s.mu.RLock()
	inv, ok := s.entries[steamID]
	s.mu.RUnlock()
	if !ok {
		return domain.NewPlayerInventory()
	}
	return inv
}

// Has reports whether a loadout is present for the player.
func (s *Store) Has(steamID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[steamID]
	return ok
}

// Put replaces the player's loadout atomically.
func (s *Store) Put(steamID uint64, inv *domain.PlayerInventory) {
	s.mu.Lock()
	s.entries[steamID] = inv
	s.mu.Unlock()
}

// PutPinned stores an operator-supplied loadout and marks the id pinned.
func (s *Store) PutPinned(steamID uint64, inv *domain.PlayerInventory) {
	s.mu.Lock()
	s.entries[steamID] = inv
	s.pinned[steamID] = struct{}{}
	s.mu.Unlock()
}

// Pinned reports whether the id carries an operator-supplied loadout.
func (s *Store) Pinned(steamID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pinned[steamID]
	return ok
}

// Remove drops the player's loadout. No-op for pinned ids, so a pinned
// loadout survives any number of connect/disconnect cycles.
func (s *Store) Remove(steamID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, pinned := s.pinned[steamID]; pinned {
		return
	}
	delete(s.entries, steamID)
}

// ClearStale removes non-pinned entries for players that are no longer
// connected. Invoked on disconnect events to bound growth under churn.
func (s *Store) ClearStale(connected func(steamID uint64) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		if _, pinned := s.pinned[id]; pinned {
			continue
		}
		if !connected(id) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of stored loadouts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
