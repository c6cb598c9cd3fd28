package probe

import "errors"

// Probe failures, checkable with errors.Is. A probe never partially
// succeeds: any of these aborts the whole query and nothing read so far
// escapes to the caller.
var (
	// ErrNotADeviceNode is returned when the handle does not refer to a
	// character device, or refers to a device of the wrong class for the
	// requested kind (the kernel answers ENOTTY to the identity ioctl).
	ErrNotADeviceNode = errors.New("probe: handle is not an input device node")

	// ErrPermissionDenied is returned when the kernel refuses a query on
	// the handle (EACCES or EPERM).
	ErrPermissionDenied = errors.New("probe: permission denied")

	// ErrQueryFailed is returned for any other I/O failure while reading
	// identity or capability bits.
	ErrQueryFailed = errors.New("probe: device query failed")

	// ErrUnsupportedBusType is returned when the device reports a bus
	// identifier outside the kernel's bus table.
	ErrUnsupportedBusType = errors.New("probe: unsupported bus type")
)
