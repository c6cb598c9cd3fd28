package registry

import "errors"

var (
	// ErrStaleHandle is returned by operations on a Handle or
	// PhysicalDevice after the registry has removed it. Removal is
	// terminal; callers must re-identify the node.
	ErrStaleHandle = errors.New("registry: stale handle")

	// ErrUnknownIdentity is returned by Remove when the identity was
	// never registered or has already been removed.
	ErrUnknownIdentity = errors.New("registry: unknown identity")

	// ErrIdentityFailed is returned when the kernel-device identity of a
	// file handle cannot be determined.
	ErrIdentityFailed = errors.New("registry: identity query failed")
)
