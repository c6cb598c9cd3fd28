package device

import (
	"fmt"
	"os"

	"github.com/nerrad567/inputid/internal/probe"
)

// Builder assembles a Device from one primary identity source: an evdev
// handle, a hidraw handle, pre-probed raw info, or bare USB identifiers.
// Supplying more than one probing source fails the build with
// ErrConflictingSources; a USB id combined with a handle is fine and is
// cross-checked against the handle's identifiers.
// Options chain; Build performs the probe/classify/resolve pipeline.
//
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	evdev  *os.File
	hidraw *os.File
	raw    *probe.RawDeviceInfo

	usbSet  bool
	vendor  uint16
	product uint16
	bus     probe.BusType

	name string
	db   Database
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// FromEvdev supplies an open /dev/input/event* handle as the primary
// identity source. The handle is only ioctl'd, never read, and the
// Builder does not take ownership of it.
func (b *Builder) FromEvdev(f *os.File) *Builder {
	b.evdev = f
	return b
}

// FromHidraw supplies an open /dev/hidraw* handle as the primary
// identity source.
func (b *Builder) FromHidraw(f *os.File) *Builder {
	b.hidraw = f
	return b
}

// FromRawInfo supplies already-probed raw info, bypassing the probe.
// Used by the registry (which probes once per identity) and by tests.
func (b *Builder) FromRawInfo(info *probe.RawDeviceInfo) *Builder {
	b.raw = info
	return b
}

// FromUSBID supplies bare USB identifiers. Without a handle the
// database alone drives resolution; the bus defaults to USB unless
// WithBus overrides it.
func (b *Builder) FromUSBID(vendor, product uint16) *Builder {
	b.usbSet = true
	b.vendor = vendor
	b.product = product
	return b
}

// WithBus overrides the generic-default bus for USB-id builds. Ignored
// when a handle is supplied (the handle's bus wins).
func (b *Builder) WithBus(bus probe.BusType) *Builder {
	b.bus = bus
	return b
}

// WithName sets the device name for builds whose source carries none.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithDatabase supplies the hardware database consulted during
// resolution. Without one, only classification and heuristics apply.
func (b *Builder) WithDatabase(db Database) *Builder {
	b.db = db
	return b
}

// Build runs the identification pipeline and returns the immutable
// Device.
//
// Errors: no source at all fails with ErrNoSource, more than one
// probing source with ErrConflictingSources, and a probe failure
// aborts entirely; all return a nil Device. When handle-derived
// identifiers disagree with an explicitly supplied USB id the build
// still succeeds — Build returns a valid Device (handle identifiers
// win) alongside an error unwrapping to ErrIDMismatch. Callers must
// therefore check the Device before the error shape:
//
//	dev, err := b.Build()
//	if dev == nil {
//	    return err // fatal
//	}
//	if err != nil { ... } // non-fatal id mismatch
func (b *Builder) Build() (*Device, error) {
	sources := 0
	for _, set := range []bool{b.raw != nil, b.evdev != nil, b.hidraw != nil} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, ErrConflictingSources
	}

	info, err := b.rawInfo()
	if err != nil {
		return nil, err
	}

	if info == nil && !b.usbSet {
		return nil, ErrNoSource
	}

	dev := &Device{name: b.name}

	// Identity: the handle wins over explicit identifiers.
	var mismatch error
	if info != nil {
		dev.bus = info.Bus
		dev.vendor = info.Vendor
		dev.product = info.Product
		if info.Name != "" {
			dev.name = info.Name
		}
		if b.usbSet && (b.vendor != info.Vendor || b.product != info.Product) {
			mismatch = fmt.Errorf("%w: handle %04x:%04x, supplied %04x:%04x",
				ErrIDMismatch, info.Vendor, info.Product, b.vendor, b.product)
		}
	} else {
		dev.bus = b.bus
		if dev.bus == 0 {
			dev.bus = probe.BusUSB
		}
		dev.vendor = b.vendor
		dev.product = b.product
	}

	// Classification contributes nothing on the USB-id path: an empty
	// set is the explicit "no capability evidence" answer, not a
	// partial one.
	dev.caps = Classify(info)

	var rule GroupingRule
	dev.physType, rule = Resolve(b.db, dev.bus, dev.vendor, dev.product, dev.caps)
	dev.groupKey = deriveGroupingKey(rule, info, dev.bus, dev.vendor, dev.product)

	return dev, mismatch
}

// rawInfo obtains the probe output for the configured source, or nil
// for USB-id-only builds.
func (b *Builder) rawInfo() (*probe.RawDeviceInfo, error) {
	switch {
	case b.raw != nil:
		return b.raw, nil
	case b.evdev != nil:
		return probe.Probe(b.evdev, probe.KindEvdev)
	case b.hidraw != nil:
		return probe.Probe(b.hidraw, probe.KindHidraw)
	}
	return nil, nil
}
