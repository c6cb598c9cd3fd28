package probe

// Kind selects the probing strategy for a handle.
type Kind string

const (
	// KindEvdev probes a /dev/input/event* node.
	KindEvdev Kind = "evdev"

	// KindHidraw probes a /dev/hidraw* node.
	KindHidraw Kind = "hidraw"
)

// Valid reports whether k is a recognised handle kind.
func (k Kind) Valid() bool {
	return k == KindEvdev || k == KindHidraw
}

// HIDUsage is one top-level application collection from a HID report
// descriptor: the usage page plus the usage ID opening the collection.
type HIDUsage struct {
	Page  uint16
	Usage uint16
}

// RawDeviceInfo carries everything a single probe learned about a
// device node. It is transient input to classification and resolution
// and is never serialized.
//
// For evdev handles the bitmaps are populated and Usages is nil; for
// hidraw handles the reverse holds. Phys and Uniq may be empty on
// either path (the kernel reports them only when the driver set them).
type RawDeviceInfo struct {
	Kind    Kind
	Bus     BusType
	Vendor  uint16
	Product uint16
	Version uint16
	Name    string
	Phys    string
	Uniq    string

	Events   Bitmap
	Keys     Bitmap
	Rel      Bitmap
	Abs      Bitmap
	Switches Bitmap
	Props    Bitmap

	Usages []HIDUsage
}

// HasEvent reports whether the device claims the event class.
func (r *RawDeviceInfo) HasEvent(ev EventType) bool { return r.Events.Has(uint16(ev)) }

// HasKey reports whether the key or button code is present.
func (r *RawDeviceInfo) HasKey(k KeyCode) bool { return r.Keys.Has(uint16(k)) }

// HasRel reports whether the relative axis is present.
func (r *RawDeviceInfo) HasRel(rel RelCode) bool { return r.Rel.Has(uint16(rel)) }

// HasAbs reports whether the absolute axis is present.
func (r *RawDeviceInfo) HasAbs(abs AbsCode) bool { return r.Abs.Has(uint16(abs)) }

// HasProp reports whether the input property bit is set.
func (r *RawDeviceInfo) HasProp(p PropCode) bool { return r.Props.Has(uint16(p)) }

// HasUsage reports whether the HID usage summary contains the pair.
func (r *RawDeviceInfo) HasUsage(page, usage uint16) bool {
	for _, u := range r.Usages {
		if u.Page == page && u.Usage == usage {
			return true
		}
	}
	return false
}

// ButtonCount returns how many codes in the button range [lo, hi] are
// present. Classifier rules use it for the many-buttons patterns.
func (r *RawDeviceInfo) ButtonCount(lo, hi KeyCode) int {
	return r.Keys.CountRange(uint16(lo), uint16(hi))
}
