package phxsock

import (
	"reflect"
	"sync"
)

// Registry is the process-wide routing table: it maps an endpoint's type
// tag to its mount path, a connection id to its outbound queue, and a
// (path, topic) pair to the set of joined connection ids.
//
// Grounded on pubsub/pubsub.go's subscription bookkeeping (a map guarded
// by a single sync.RWMutex) rather than per-entry locking, following that
// package's pattern of one coarse lock for its whole subscription table.
type Registry struct {
	mu      sync.RWMutex
	paths   map[reflect.Type]string
	senders map[string]chan []byte
	members map[memberKey]map[string]struct{}
}

type memberKey struct {
	path  string
	topic Topic
}

func newRegistry() *Registry {
	return &Registry{
		paths:   map[reflect.Type]string{},
		senders: map[string]chan []byte{},
		members: map[memberKey]map[string]struct{}{},
	}
}

// defaultRegistry is the process singleton shared by every Endpoint:
// NewEndpoint records the Endpoint's path here under its Tag, and each
// connection's sender and memberships are kept here. The package-level
// Broadcast/BroadcastFrom helpers resolve an Endpoint's path from it.
var defaultRegistry = newRegistry()

func (r *Registry) registerPath(tag reflect.Type, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[tag] = path
}

func (r *Registry) pathFor(tag reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.paths[tag]
	return path, ok
}

func (r *Registry) registerSender(id string, outbound chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[id] = outbound
}

// removeConnection drops id from senders and from every members set it
// belongs to.
func (r *Registry) removeConnection(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.senders, id)
	for key, set := range r.members {
		if _, ok := set[id]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(r.members, key)
			}
		}
	}
}

func (r *Registry) join(path string, topic Topic, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{path: path, topic: topic}
	set, ok := r.members[key]
	if !ok {
		set = map[string]struct{}{}
		r.members[key] = set
	}
	set[id] = struct{}{}
}

func (r *Registry) leave(path string, topic Topic, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{path: path, topic: topic}
	if set, ok := r.members[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.members, key)
		}
	}
}

// membersOf returns a snapshot of the ids currently joined to (path, topic),
// used by tests.
func (r *Registry) membersOf(path string, topic Topic) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[memberKey{path: path, topic: topic}]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// doBroadcast coerces data to a Response, builds and encodes a single
// Frame, and enqueues it on every member's outbound queue except exclude.
// A missing sender (member already disconnected) is silently skipped.
// Enqueuing blocks on a full queue, the same backpressure Socket.Push
// applies; a try-send-or-drop policy would be the alternative but this
// implementation does not take it.
func (r *Registry) doBroadcast(exclude, path string, topic Topic, event string, data any, prevFrame *Frame) error {
	if path == "" || topic == "" {
		return nil
	}

	out := &Frame{Topic: topic, Event: ParseEvent(event), Payload: coerceResponse(data)}
	out.Merge(prevFrame)

	encoded, err := out.Encode()
	if err != nil {
		return &TransportError{Cause: err}
	}

	r.mu.RLock()
	set := r.members[memberKey{path: path, topic: topic}]
	queues := make([]chan []byte, 0, len(set))
	for id := range set {
		if id == exclude {
			continue
		}
		if ch, ok := r.senders[id]; ok {
			queues = append(queues, ch)
		}
	}
	r.mu.RUnlock()

	for _, ch := range queues {
		ch <- encoded
	}
	return nil
}

// coerceResponse accepts either a pre-built Response (e.g. the result of
// OkResponse/ErrResponse) or a plain value, which is treated as a
// successful payload via the same rules as IntoResponse.
func coerceResponse(data any) Response {
	if r, ok := data.(Response); ok {
		return r
	}
	return IntoResponse(data, nil)
}
