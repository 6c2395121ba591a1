package phxsock

import "sync"

// Socket is the per-connection mutable state exposed to join/event
// handlers. It is shared between the owning connection task and handler
// closures; the mutable fields (joined, topic, lastFrame) are guarded by
// mu, which is internal: each accessor holds it only for the duration of a
// single read or mutation.
type Socket struct {
	id   string
	path string

	mu        sync.Mutex
	joined    bool
	topic     Topic
	lastFrame *Frame

	assigns *Assigns

	reg  *Registry
	send func([]byte) error
}

func newSocket(id, path string, reg *Registry, send func([]byte) error) *Socket {
	return &Socket{
		id:      id,
		path:    path,
		assigns: newAssigns(),
		reg:     reg,
		send:    send,
	}
}

// ID returns the connection's identifier.
func (s *Socket) ID() string {
	return s.id
}

// Path returns the endpoint path this socket belongs to.
func (s *Socket) Path() string {
	return s.path
}

// Joined reports whether a join on this socket has succeeded. A later leave
// does not reset it.
func (s *Socket) Joined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// Topic returns the topic of the most recent successful join, or "" if
// none. A later leave does not clear it.
func (s *Socket) Topic() Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Assigns returns this socket's per-connection key/value bag.
func (s *Socket) Assigns() *Assigns {
	return s.assigns
}

func (s *Socket) setLastFrame(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFrame = f
}

func (s *Socket) getLastFrame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFrame
}

func (s *Socket) setJoined(topic Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = true
	s.topic = topic
}

// Push encodes (reply, err) via IntoResponse, builds an event Frame merged
// with the most recent inbound frame's refs, and enqueues it on this
// connection's outbound queue. It suspends if the queue is full. It fails
// with ErrQueueClosed if the socket has no outbound queue (before the
// upgrade completes, or once the connection has ended), and with a
// *TransportError if the frame cannot be encoded.
func (s *Socket) Push(event string, reply any, err error) error {
	out := &Frame{Event: CustomEvent(event), Payload: IntoResponse(reply, err)}
	out.Merge(s.getLastFrame())
	return s.sendFrame(out)
}

// Broadcast fans an event out to every member of this socket's current
// (path, topic), including this socket. It is a silent no-op if the
// socket has no current topic.
func (s *Socket) Broadcast(event string, data any) error {
	topic := s.Topic()
	if topic == "" {
		return nil
	}
	return s.reg.doBroadcast("", s.path, topic, event, data, nil)
}

// BroadcastFrom is Broadcast excluding excludeID (typically s.ID(), so the
// sender never receives its own broadcast).
func (s *Socket) BroadcastFrom(excludeID, event string, data any) error {
	topic := s.Topic()
	if topic == "" {
		return nil
	}
	return s.reg.doBroadcast(excludeID, s.path, topic, event, data, nil)
}

// pushMessage sends a pre-built frame straight to the client, used by the
// connection task for join/leave/heartbeat replies that are not run
// through IntoResponse a second time.
func (s *Socket) pushMessage(f *Frame) error {
	return s.sendFrame(f)
}

func (s *Socket) sendFrame(f *Frame) error {
	if s.send == nil {
		return ErrQueueClosed
	}
	encoded, err := f.Encode()
	if err != nil {
		return &TransportError{Cause: err}
	}
	return s.send(encoded)
}
