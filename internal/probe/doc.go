// Package probe extracts raw identity and capability bits from an
// already-open input device handle.
//
// Two handle kinds are supported:
//
//	evdev   /dev/input/event*  -> name, input_id, event code bitmaps,
//	                              input properties, phys/uniq strings
//	hidraw  /dev/hidraw*       -> devinfo, name, HID report descriptor
//	                              reduced to top-level usage pairs
//
// Probing needs no privilege beyond what opening the handle already
// implied: every query is an ioctl against the supplied descriptor, and
// the package never opens paths itself. A probe either fully succeeds
// or fails with one of the sentinel errors in errors.go; partially
// populated results are never returned.
//
// The output, RawDeviceInfo, is a transient carrier consumed by the
// classification and resolution layers. It is not part of any wire
// format.
package probe
