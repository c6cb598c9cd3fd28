// Package service exposes the identification engine over a unix stream
// socket, the surface privileged transports (compositors, session
// brokers) talk to.
//
// The protocol is line-delimited JSON. An identify request carries the
// device file descriptor as SCM_RIGHTS ancillary data, so the daemon
// never needs permission to open device nodes itself — the caller's
// open handle is the capability. Identified devices are addressed by
// server-issued UUID tokens; a watch request holds the connection and
// reports removal.
//
// Every request and response carries a protocol version. Requests with
// a higher version than the server supports are rejected, never
// partially interpreted.
package service
