package phxsock

import (
	"log/slog"
	"sync"
)

// JoinFunc handles a client's request to join a matching topic. A nil
// error admits the socket to the topic; the returned value becomes the Ok
// payload of the join reply.
type JoinFunc func(topic Topic, payload Payload, socket *Socket) (reply any, err error)

// EventFunc handles a custom client-pushed event on a joined topic.
type EventFunc func(payload Payload, socket *Socket) (reply any, err error)

// Channel bundles an optional join handler with a set of named event
// handlers. It is built additively with Join and Handler and is immutable
// once an Endpoint starts serving connections.
type Channel struct {
	mu       sync.RWMutex
	join     JoinFunc
	handlers map[string]EventFunc
}

// NewChannel returns an empty Channel ready for Join/Handler registration.
func NewChannel() *Channel {
	return &Channel{handlers: map[string]EventFunc{}}
}

// Join registers the single join handler for this channel. Without one,
// any join on a topic matching this channel is rejected.
func (c *Channel) Join(f JoinFunc) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.join = f
	return c
}

// Handler registers f for event. A second registration under the same name
// replaces the first (last-writer-wins).
func (c *Channel) Handler(event string, f EventFunc) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers == nil {
		c.handlers = map[string]EventFunc{}
	}
	c.handlers[event] = f
	return c
}

func (c *Channel) handlerFor(event string) (EventFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.handlers[event]
	return f, ok
}

// invokeJoin runs the registered join handler, recovering a panic into
// ErrJoinCrashed so a misbehaving handler rejects the join instead of
// taking down the connection (grounded on socket/channel.go's handleJoin).
func (c *Channel) invokeJoin(topic Topic, payload Payload, socket *Socket) (reply any, err error) {
	c.mu.RLock()
	join := c.join
	c.mu.RUnlock()

	if join == nil {
		return nil, ErrUnmatchedTopic
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("phxsock: join handler panicked", slog.Any("recover", r), slog.String("topic", string(topic)))
			reply = nil
			err = ErrJoinCrashed
		}
	}()

	return join(topic, payload, socket)
}
