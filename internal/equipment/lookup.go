// Package equipment holds the static reference data for item definitions:
// which (definition, paint) pairs still render the legacy mesh variant, and
// which definitions carry their own mesh model path. Built once at startup
// from the remote catalog, read-only afterwards.
package equipment

// Descriptor is one entry of the remote item catalog.
type Descriptor struct {
	Type   string `json:"type"`
	Def    int    `json:"def"`
	Index  int    `json:"index"`
	Legacy bool   `json:"legacy"`
	Model  string `json:"model"`
}

type legacyKey struct {
	def   int
	paint int
}

// Lookup answers legacy-model and model-path queries. A missing entry means
// "not legacy" / "no model"; it is never an error.
type Lookup struct {
	legacy map[legacyKey]struct{}
	models map[int]string
}

// NewLookup builds a Lookup from catalog descriptors.
func NewLookup(descriptors []Descriptor) *Lookup {
	l := &Lookup{
		legacy: make(map[legacyKey]struct{}),
		models: make(map[int]string),
	}
	for _, d := range descriptors {
		if d.Legacy {
			l.legacy[legacyKey{def: d.Def, paint: d.Index}] = struct{}{}
		}
		if d.Model != "" {
			l.models[d.Def] = d.Model
		}
	}
	return l
}

// NewEmptyLookup returns a Lookup with no entries. Used when the catalog
// fetch fails: every item then renders the current mesh.
func NewEmptyLookup() *Lookup {
	return NewLookup(nil)
}

// IsLegacy reports whether the (definition, paint) pair uses the older mesh.
func (l *Lookup) IsLegacy(def, paint int) bool {
	_, ok := l.legacy[legacyKey{def: def, paint: paint}]
	return ok
}

// Model returns the mesh model path for a definition, if it has one.
func (l *Lookup) Model(def int) (string, bool) {
	path, ok := l.models[def]
	return path, ok
}

// Size returns the number of legacy entries plus model entries. Logged at
// startup as a sanity check on the catalog fetch.
func (l *Lookup) Size() int {
	return len(l.legacy) + len(l.models)
}
