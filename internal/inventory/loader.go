package inventory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/logger"
)

// LoadPinned reads an operator-supplied loadout file and installs every
// entry as pinned. The file is a JSON object mapping steam ids to equipped
// inventories in the backend wire schema. A missing file is not an error;
// a malformed one is, so operator typos fail loudly at startup.
func LoadPinned(path string, store *Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read pinned loadouts: %w", err)
	}

	var entries map[string]*domain.PlayerInventory
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse pinned loadouts: %w", err)
	}

	loaded := 0
	for key, inv := range entries {
		var steamID uint64
		if _, err := fmt.Sscanf(key, "%d", &steamID); err != nil || steamID == 0 {
			logger.Warn("skipping pinned loadout with bad steam id", "key", key)
			continue
		}
		if inv == nil {
			logger.Warn("skipping null pinned loadout", "key", key)
			continue
		}
		store.PutPinned(steamID, inv)
		loaded++
	}
	return loaded, nil
}
