// Package device implements the identification engine: it turns raw
// probe output (or bare USB identifiers) into an immutable Device
// description carrying a capability set and, where determinable, a
// physical type.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────┐
//	│                     Identification engine                      │
//	│                                                                │
//	│  ┌──────────────┐   ┌──────────────┐   ┌──────────────┐        │
//	│  │   Builder    │──▶│   Classify   │──▶│   Resolve    │        │
//	│  │ (builder.go) │   │ (classify.go)│   │ (resolve.go) │        │
//	│  │              │   │              │   │              │        │
//	│  │ • sources    │   │ • bit rules  │   │ • db lookup  │        │
//	│  │ • precedence │   │ • additive   │   │ • heuristics │        │
//	│  └──────────────┘   └──────────────┘   └──────────────┘        │
//	│          │                                                     │
//	│          ▼                                                     │
//	│  ┌──────────────┐   ┌──────────────┐                           │
//	│  │    Device    │──▶│    Codec     │                           │
//	│  │ (device.go)  │   │  (codec.go)  │                           │
//	│  └──────────────┘   └──────────────┘                           │
//	└────────────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Capability: one category of input the device can produce (a device
//     may carry several)
//   - PhysicalType: the single category the device is sold/used as
//   - Device: the immutable identification result
//   - Builder: assembles a Device from an evdev handle, a hidraw handle,
//     or bare USB identifiers
//   - Database: the lookup surface the hardware database implements
//
// # Usage
//
//	dev, err := device.NewBuilder().
//	    FromEvdev(f).
//	    WithDatabase(db).
//	    Build()
//	if err != nil && !errors.Is(err, device.ErrIDMismatch) {
//	    return err
//	}
//
//	if dev.HasCapability(device.CapPointer) { ... }
//	payload, _ := dev.Serialize()
//
// The serialized payload is self-contained: device.Deserialize
// reconstructs an equivalent Device on an unprivileged receiver without
// probing or database access.
//
// # Thread Safety
//
// A Device is immutable after Build and safe for unsynchronized
// concurrent reads. Builders are not safe for concurrent use.
package device
