package phxsock

import (
	"errors"
	"fmt"
)

// Error taxonomy. Invalid-frame decode failures are represented by
// DecodeError (frame.go); serialization failures are folded into that same
// class when decoding and into TransportError when encoding an outbound
// reply fails. Application errors are not a distinct Go type: they are
// whatever error a join/event handler returns, coerced to the wire by
// IntoResponse.
var (
	// ErrUnmatchedTopic is returned when a join's topic matches no
	// registered Channel, or matches one with no join handler registered.
	ErrUnmatchedTopic = errors.New("unmatched topic")

	// ErrJoinCrashed replaces a recovered panic from a join handler.
	ErrJoinCrashed = errors.New("join crashed")

	// ErrQueueClosed is returned by Socket.Push when the socket has no
	// outbound queue: before the upgrade has completed (e.g. from a Connect
	// or ID hook) or after the connection has ended.
	ErrQueueClosed = errors.New("outbound queue closed")

	// ErrUnknownEndpoint is returned by the package-level Broadcast helpers
	// when no Endpoint has been constructed for the given Tag.
	ErrUnknownEndpoint = errors.New("no endpoint registered for tag")
)

// TransportError wraps a WebSocket send/receive failure, including an
// encode failure that left nothing to send.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// HTTPError lets a Connect hook reject the upgrade with a specific HTTP
// status instead of the default 403.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}
