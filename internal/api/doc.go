// Package api provides the HTTP introspection API and WebSocket event
// stream for the inputid daemon.
//
// The unix socket service (internal/service) is the identification
// transport: it is where file descriptors arrive and handles are
// issued. This package is the read side for humans and dashboards: it
// exposes what the registry currently holds, offline identification by
// USB ID, and a live event feed.
//
// # Endpoints
//
//	GET  /api/v1/health                       liveness and device count
//	GET  /api/v1/version                      daemon version
//	GET  /api/v1/devices                      all registered handles
//	GET  /api/v1/devices/{identity}           one handle by major:minor
//	GET  /api/v1/devices/{identity}/payload   codec payload, text/plain
//	GET  /api/v1/physical                     all physical aggregates
//	GET  /api/v1/physical/{key}               one aggregate by group key
//	POST /api/v1/identify                     identify by USB vendor/product
//	GET  /api/v1/events                       WebSocket event stream
//
// # WebSocket Channels
//
// Clients subscribe to channels after connecting:
//
//	device.identified        a handle was registered
//	device.removed           a handle was removed
//	device.physical_removed  the last constituent of an aggregate left
//
// # Lifecycle
//
// The server follows the same pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
