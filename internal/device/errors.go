package device

import "errors"

// Engine errors, checkable with errors.Is:
//
//	if errors.Is(err, device.ErrIDMismatch) {
//	    // build succeeded, identifiers disagreed
//	}
var (
	// ErrNoSource is returned by Build when no primary identity source
	// (evdev handle, hidraw handle, or USB id) was supplied.
	ErrNoSource = errors.New("device: no identity source supplied")

	// ErrConflictingSources is returned by Build when more than one
	// probing source (evdev handle, hidraw handle, raw info) was
	// supplied. A bare USB id may accompany a handle; it is then only
	// cross-checked, never probed.
	ErrConflictingSources = errors.New("device: conflicting identity sources supplied")

	// ErrIDMismatch is returned by Build when handle-derived identifiers
	// disagree with an explicitly supplied USB id. The build still
	// succeeds: Build returns a valid Device alongside this error, with
	// the handle-derived identifiers taking precedence.
	ErrIDMismatch = errors.New("device: handle identifiers do not match supplied usb id")

	// ErrIncomplete is returned by Serialize when a mandatory field is
	// absent. Builder-produced Devices always carry the mandatory
	// fields, so this only fires for hand-constructed values.
	ErrIncomplete = errors.New("device: description incomplete")

	// ErrMalformedInput is returned by Deserialize for payloads that do
	// not parse: bad header, bad hex field, or a malformed line.
	ErrMalformedInput = errors.New("device: malformed payload")

	// ErrUnsupportedVersion is returned by Deserialize when the payload
	// declares a format version newer than this package supports. No
	// partial interpretation is attempted.
	ErrUnsupportedVersion = errors.New("device: unsupported payload version")
)
