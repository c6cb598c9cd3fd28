package hwdb

import "errors"

// Database errors, checkable with errors.Is.
var (
	// ErrInvalidEntry is returned when an entry fails validation: an
	// unknown bus name, an unrecognised type or capability tag, an
	// invalid grouping rule, or a vendor-less product match.
	ErrInvalidEntry = errors.New("hwdb: invalid entry")

	// ErrInvalidFragment is returned when an override fragment cannot
	// be parsed.
	ErrInvalidFragment = errors.New("hwdb: invalid override fragment")
)
