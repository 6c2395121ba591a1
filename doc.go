// Package phxsock implements a Phoenix-Channels-compatible messaging layer
// on top of a WebSocket transport.
//
// A connected client multiplexes many logical channels, keyed by a
// hierarchical topic string such as "room:lobby", over a single WebSocket.
// Inbound frames are routed to join/event handlers registered per topic
// pattern; outbound fan-out primitives (push, broadcast, broadcast-except)
// are provided on top of a process-wide registry.
//
// The HTTP router that mounts the upgrade endpoint, TLS termination, and
// static asset serving are the caller's responsibility: Endpoint.Upgrade is
// a plain http.HandlerFunc that can be wired into any router.
package phxsock
