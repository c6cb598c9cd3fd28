// Package registry caches identified devices by kernel-device identity
// and groups sibling kernel nodes into physical-device aggregates.
//
// # Architecture
//
//	                 ┌──────────────────────────────┐
//	open fd ───────► │ Registry                     │
//	                 │   fstat → Identity           │
//	                 │   cache hit? ──► *Handle     │
//	                 │   miss: singleflight build   │
//	                 │         │                    │
//	                 │         ▼                    │
//	                 │   device.Builder             │
//	                 │         │                    │
//	                 │         ▼                    │
//	                 │   register + group           │
//	                 │         │                    │
//	                 │         ▼                    │
//	                 │   *PhysicalDevice aggregate  │
//	                 └──────────────────────────────┘
//
// Identity is the node's device number (st_rdev), so two file handles
// opened on the same /dev node resolve to the same cached Handle without
// re-probing. Concurrent first lookups for one identity share exactly one
// probe and build.
//
// When the database supplies a grouping rule for a device, its derived
// grouping key attaches the Handle to a PhysicalDevice: the aggregate a
// user would name ("a gamepad") even when the kernel splits it into
// several event nodes. Aggregate capabilities are the union of the
// constituents and only grow while any constituent remains.
//
// Removal flows one way: an external monitor reports a vanished node,
// Remove evicts the Handle, notifies its subscribers, and tears down the
// aggregate when its last constituent goes. Removed handles are terminal;
// operations on them fail with ErrStaleHandle.
//
// # Thread Safety
//
// All Registry, Handle, and PhysicalDevice methods are safe for
// concurrent use. Devices returned by handles are immutable.
package registry
