package device

import (
	"fmt"
	"strings"

	"github.com/nerrad567/inputid/internal/probe"
)

// Device is the immutable identification result. It is constructed only
// by Builder (or Deserialize) and never mutated afterwards; new
// information about the same kernel node requires building a new Device.
type Device struct {
	name    string
	bus     probe.BusType
	vendor  uint16
	product uint16

	caps     CapabilitySet
	physType PhysicalType

	// groupKey associates sibling kernel nodes of one physical unit.
	// Empty when the database supplied no grouping rule or the rule's
	// inputs were absent. Only the registry consumes it.
	groupKey string
}

// Name returns the device name as reported by the kernel (or supplied
// explicitly). May be empty for bare USB-id builds.
func (d *Device) Name() string { return d.name }

// Bus returns the bus the device reports.
func (d *Device) Bus() probe.BusType { return d.bus }

// Vendor returns the vendor id.
func (d *Device) Vendor() uint16 { return d.vendor }

// Product returns the product id.
func (d *Device) Product() uint16 { return d.product }

// PhysicalType returns the resolved physical type, or the empty string
// when unknown.
func (d *Device) PhysicalType() PhysicalType { return d.physType }

// Capabilities returns a copy of the capability set. The copy keeps the
// Device immutable even if the caller mutates the result.
func (d *Device) Capabilities() CapabilitySet { return d.caps.Clone() }

// HasCapability reports whether the device carries the capability.
func (d *Device) HasCapability(c Capability) bool { return d.caps.Has(c) }

// GroupingKey returns the key associating this node with its siblings,
// or the empty string when no grouping applies.
func (d *Device) GroupingKey() string { return d.groupKey }

// GroupingRule selects how a database entry derives the grouping key
// for its kernel nodes. The key must be stable across all sibling nodes
// of one physical unit and readable without privilege.
type GroupingRule string

const (
	// GroupNone disables aggregation for the entry.
	GroupNone GroupingRule = "none"

	// GroupPhysPrefix derives the key from the kernel phys topology
	// string with the trailing "/inputN" segment stripped, e.g.
	// "usb-0000:00:14.0-3/input3" -> "usb-0000:00:14.0-3". This is the
	// default: it is shared by the sibling event nodes of one USB
	// interface set. Falls back to GroupUniq when phys is empty.
	GroupPhysPrefix GroupingRule = "phys-prefix"

	// GroupUniq derives the key from the device's unique serial string.
	GroupUniq GroupingRule = "uniq"

	// GroupVidPid derives the key from bus:vendor:product. Only safe
	// for devices that cannot appear twice on one machine; database
	// entries opt in explicitly.
	GroupVidPid GroupingRule = "vidpid"
)

// Valid reports whether r is a recognised grouping rule.
func (r GroupingRule) Valid() bool {
	switch r {
	case GroupNone, GroupPhysPrefix, GroupUniq, GroupVidPid:
		return true
	}
	return false
}

// DatabaseEntry is what a hardware-database hit contributes to
// resolution: the known physical type, capability overrides to union
// into the classified set, and the grouping rule for sibling nodes.
type DatabaseEntry struct {
	Type         PhysicalType
	Capabilities []Capability
	Grouping     GroupingRule
}

// Database is the lookup surface of the hardware database. Implemented
// by hwdb.DB; defined here so the engine does not depend on the
// database's storage or load pipeline.
//
// Lookup walks the layered keys (exact triple, vendor/product pair,
// bus-only default) and reports the first hit. A miss is not an error.
type Database interface {
	Lookup(bus probe.BusType, vendor, product uint16) (DatabaseEntry, bool)
}

// deriveGroupingKey applies a grouping rule to the device identity.
// Returns "" when the rule's inputs are absent, which disables
// aggregation for this node rather than inventing an unstable key.
func deriveGroupingKey(rule GroupingRule, info *probe.RawDeviceInfo, bus probe.BusType, vendor, product uint16) string {
	switch rule {
	case GroupPhysPrefix:
		if info == nil {
			return ""
		}
		if info.Phys != "" {
			return physPrefix(info.Phys)
		}
		return info.Uniq
	case GroupUniq:
		if info == nil {
			return ""
		}
		return info.Uniq
	case GroupVidPid:
		// Usable without a probe: bare USB-id builds still group.
		return fmt.Sprintf("%04x:%04x:%04x", uint16(bus), vendor, product)
	}
	return ""
}

// physPrefix strips the trailing "/inputN" segment from a kernel phys
// string. Strings without the segment pass through unchanged.
func physPrefix(phys string) string {
	if i := strings.LastIndex(phys, "/"); i > 0 && strings.HasPrefix(phys[i+1:], "input") {
		return phys[:i]
	}
	return phys
}
