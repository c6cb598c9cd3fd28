package hwdb

import (
	"fmt"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
)

// Match is the key side of an Entry. The populated fields decide the
// layer the entry lands in:
//
//   - bus + vendor + product: exact triple
//   - vendor + product, bus empty or "any": pair, matched on any bus
//   - bus alone: bus-only default
//
// A product without a vendor is invalid.
type Match struct {
	// Bus is the lower-case kernel bus name ("usb", "bluetooth", ...),
	// or empty/"any" for a pair entry.
	Bus string `yaml:"bus,omitempty"`

	Vendor  uint16 `yaml:"vendor,omitempty"`
	Product uint16 `yaml:"product,omitempty"`
}

// anyBus marks a pair entry explicitly.
const anyBus = "any"

// Entry is one hardware-database row: a match key plus what a hit
// contributes to resolution. The same shape is used for the built-in
// table, YAML override fragments, and the compiled SQLite store.
type Entry struct {
	Match Match `yaml:"match"`

	// Name is an optional human-readable label for the entry. It never
	// overrides the kernel-reported device name.
	Name string `yaml:"name,omitempty"`

	Type         device.PhysicalType `yaml:"type,omitempty"`
	Capabilities []device.Capability `yaml:"capabilities,omitempty"`
	Grouping     device.GroupingRule `yaml:"grouping,omitempty"`
}

// layer classifies where the entry sits in the lookup order.
type layer int

const (
	layerExact layer = iota
	layerPair
	layerBus
)

// resolveKey validates the match and returns its layer plus the parsed
// bus (zero for pair entries).
func (e *Entry) resolveKey() (layer, probe.BusType, error) {
	wildBus := e.Match.Bus == "" || e.Match.Bus == anyBus

	var bus probe.BusType
	if !wildBus {
		b, ok := probe.ParseBus(e.Match.Bus)
		if !ok {
			return 0, 0, fmt.Errorf("%w: unknown bus %q", ErrInvalidEntry, e.Match.Bus)
		}
		bus = b
	}

	switch {
	case e.Match.Vendor == 0 && e.Match.Product != 0:
		return 0, 0, fmt.Errorf("%w: product 0x%04x without vendor", ErrInvalidEntry, e.Match.Product)
	case e.Match.Vendor == 0:
		if wildBus {
			return 0, 0, fmt.Errorf("%w: empty match", ErrInvalidEntry)
		}
		return layerBus, bus, nil
	case wildBus:
		return layerPair, 0, nil
	default:
		return layerExact, bus, nil
	}
}

// validate checks the value side of the entry.
func (e *Entry) validate() error {
	if e.Type != "" && !e.Type.Known() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, e.Type)
	}
	for _, c := range e.Capabilities {
		if !c.Known() {
			return fmt.Errorf("%w: unknown capability %q", ErrInvalidEntry, c)
		}
	}
	if e.Grouping != "" && !e.Grouping.Valid() {
		return fmt.Errorf("%w: unknown grouping rule %q", ErrInvalidEntry, e.Grouping)
	}
	return nil
}

// contribution converts the entry's value side into the engine's
// DatabaseEntry shape.
func (e *Entry) contribution() device.DatabaseEntry {
	rule := e.Grouping
	if rule == "" {
		rule = device.GroupNone
	}
	caps := make([]device.Capability, len(e.Capabilities))
	copy(caps, e.Capabilities)
	return device.DatabaseEntry{
		Type:         e.Type,
		Capabilities: caps,
		Grouping:     rule,
	}
}

// mergeKey is the collision key for Merge: two entries with the same
// mergeKey occupy the same slot and the later one wins.
func (e *Entry) mergeKey() string {
	bus := e.Match.Bus
	if bus == "" {
		bus = anyBus
	}
	return fmt.Sprintf("%s/%04x/%04x", bus, e.Match.Vendor, e.Match.Product)
}
