package hwdb

import (
	"fmt"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
)

// tripleKey indexes the exact lookup layer.
type tripleKey struct {
	bus     probe.BusType
	vendor  uint16
	product uint16
}

// pairKey indexes the any-bus lookup layer.
type pairKey struct {
	vendor  uint16
	product uint16
}

// DB is the indexed, immutable hardware database. It implements
// device.Database. Construct with New (or Default) and share freely:
// lookups take no locks.
type DB struct {
	exact  map[tripleKey]device.DatabaseEntry
	pair   map[pairKey]device.DatabaseEntry
	busDef map[probe.BusType]device.DatabaseEntry

	// entries keeps the source rows for Compile and introspection.
	entries []Entry
}

// New indexes the given entries into a DB. Entries must already be
// merged (see Merge); New does not deduplicate, later entries silently
// shadow earlier ones in the same slot.
func New(entries []Entry) (*DB, error) {
	db := &DB{
		exact:   make(map[tripleKey]device.DatabaseEntry),
		pair:    make(map[pairKey]device.DatabaseEntry),
		busDef:  make(map[probe.BusType]device.DatabaseEntry),
		entries: make([]Entry, 0, len(entries)),
	}

	for i := range entries {
		e := entries[i]
		lay, bus, err := e.resolveKey()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		switch lay {
		case layerExact:
			db.exact[tripleKey{bus, e.Match.Vendor, e.Match.Product}] = e.contribution()
		case layerPair:
			db.pair[pairKey{e.Match.Vendor, e.Match.Product}] = e.contribution()
		case layerBus:
			db.busDef[bus] = e.contribution()
		}
		db.entries = append(db.entries, e)
	}

	return db, nil
}

// Default builds the standard database: the built-in table with the
// given overrides merged over it (override wins on collision).
func Default(overrides []Entry) (*DB, error) {
	return New(Merge(Builtin(), overrides))
}

// Merge layers overrides over base. On a match-key collision the
// override entry replaces the base entry; order within each slice is
// otherwise preserved.
func Merge(base, overrides []Entry) []Entry {
	out := make([]Entry, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))

	for _, e := range base {
		index[e.mergeKey()] = len(out)
		out = append(out, e)
	}
	for _, e := range overrides {
		if i, ok := index[e.mergeKey()]; ok {
			out[i] = e
			continue
		}
		index[e.mergeKey()] = len(out)
		out = append(out, e)
	}
	return out
}

// Lookup walks the layers — exact triple, vendor/product pair, bus-only
// default — and reports the first hit. A miss is not an error.
//
// Lookup implements device.Database.
func (db *DB) Lookup(bus probe.BusType, vendor, product uint16) (device.DatabaseEntry, bool) {
	if e, ok := db.exact[tripleKey{bus, vendor, product}]; ok {
		return e, true
	}
	if vendor != 0 || product != 0 {
		if e, ok := db.pair[pairKey{vendor, product}]; ok {
			return e, true
		}
	}
	if e, ok := db.busDef[bus]; ok {
		return e, true
	}
	return device.DatabaseEntry{}, false
}

// Entries returns a copy of the source rows, in load order.
func (db *DB) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	copy(out, db.entries)
	return out
}

// Len returns the number of loaded entries.
func (db *DB) Len() int {
	return len(db.entries)
}
