package phxsock

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gorilla/websocket"
)

// outboundQueueCapacity bounds the per-connection outbound queue: once
// 1024 frames are pending, a producer (Push, broadcast fan-out) blocks
// until the writer drains one.
const outboundQueueCapacity = 1024

// ConnectFunc authorizes a new connection before the WebSocket upgrade is
// completed. query carries the request's query string decoded to a
// JSON-shaped value. Returning a non-nil error aborts the upgrade; wrap it
// in *HTTPError to control the response status.
type ConnectFunc func(query Payload, socket *Socket) error

// IDFunc lets the caller replace the generated connection id once, before
// any membership is registered.
type IDFunc func(socket *Socket) (id string, ok bool)

// Endpoint is a WebSocket-mounted messaging endpoint: a path, a table of
// topic-pattern -> Channel, and optional Connect/ID hooks. Tag is a
// caller-chosen type used only to let the package-level
// Broadcast/BroadcastFrom helpers find this endpoint's path without
// holding a reference to it.
type Endpoint[Tag any] struct {
	path     string
	reg      *Registry
	channels *channelTable
	upgrader websocket.Upgrader

	connect ConnectFunc
	idFn    IDFunc
}

// NewEndpoint constructs an Endpoint mounted at path and registers it in
// the process registry under Tag, so Broadcast[Tag] and BroadcastFrom[Tag]
// can find it later.
func NewEndpoint[Tag any](path string) *Endpoint[Tag] {
	e := &Endpoint[Tag]{
		path:     path,
		reg:      defaultRegistry,
		channels: newChannelTable(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	defaultRegistry.registerPath(tagType[Tag](), path)
	return e
}

// Connect registers the connect hook.
func (e *Endpoint[Tag]) Connect(f ConnectFunc) *Endpoint[Tag] {
	e.connect = f
	return e
}

// ID registers the id hook.
func (e *Endpoint[Tag]) ID(f IDFunc) *Endpoint[Tag] {
	e.idFn = f
	return e
}

// Channel registers ch under pattern.
func (e *Endpoint[Tag]) Channel(pattern Topic, ch *Channel) *Endpoint[Tag] {
	e.channels.register(pattern, ch)
	return e
}

// Path returns the endpoint's mount path.
func (e *Endpoint[Tag]) Path() string {
	return e.path
}

// Broadcast fans event/data out to every member of (this endpoint's path,
// topic), from outside any connection.
func Broadcast[Tag any](topic Topic, event string, data any) error {
	path, ok := defaultRegistry.pathFor(tagType[Tag]())
	if !ok {
		return ErrUnknownEndpoint
	}
	return defaultRegistry.doBroadcast("", path, topic, event, data, nil)
}

// BroadcastFrom is Broadcast excluding excludeID.
func BroadcastFrom[Tag any](excludeID string, topic Topic, event string, data any) error {
	path, ok := defaultRegistry.pathFor(tagType[Tag]())
	if !ok {
		return ErrUnknownEndpoint
	}
	return defaultRegistry.doBroadcast(excludeID, path, topic, event, data, nil)
}

func tagType[Tag any]() reflect.Type {
	return reflect.TypeOf((*Tag)(nil)).Elem()
}

// Upgrade is the http.HandlerFunc that mounts this endpoint's single
// route, "{path}/websocket". It is router-agnostic: wire it into any mux
// under that path.
func (e *Endpoint[Tag]) Upgrade(w http.ResponseWriter, r *http.Request) {
	id := newConnID()
	sock := newSocket(id, e.path, e.reg, nil)

	if e.connect != nil {
		if err := e.connect(queryToPayload(r.URL.Query()), sock); err != nil {
			writeConnectError(w, err)
			return
		}
	}

	if e.idFn != nil {
		if newID, ok := e.idFn(sock); ok && newID != "" {
			sock.id = newID
			id = newID
		}
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("phxsock: websocket upgrade failed", slog.Any("error", err))
		return
	}

	outbound := make(chan []byte, outboundQueueCapacity)
	closed := make(chan struct{})
	sock.send = func(b []byte) error {
		select {
		case <-closed:
			return ErrQueueClosed
		default:
		}
		select {
		case outbound <- b:
			return nil
		case <-closed:
			return ErrQueueClosed
		}
	}

	e.reg.registerSender(id, outbound)
	defer e.reg.removeConnection(id)
	defer close(closed)

	e.serve(conn, sock, outbound)
}

// serve runs the reader and writer tasks for one connection and waits for
// either to finish, then aborts the other.
func (e *Endpoint[Tag]) serve(conn *websocket.Conn, sock *Socket, outbound chan []byte) {
	done := make(chan struct{})
	results := make(chan error, 2)

	go func() { results <- e.writeLoop(conn, outbound, done) }()
	go func() { results <- e.readLoop(conn, sock, done) }()

	<-results
	close(done)
	_ = conn.Close()
	<-results
}

func (e *Endpoint[Tag]) writeLoop(conn *websocket.Conn, outbound chan []byte, done chan struct{}) error {
	for {
		select {
		case <-done:
			return nil
		case msg, ok := <-outbound:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return &TransportError{Cause: err}
			}
		}
	}
}

func (e *Endpoint[Tag]) readLoop(conn *websocket.Conn, sock *Socket, done chan struct{}) error {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return &TransportError{Cause: err}
		}
		if mt != websocket.TextMessage {
			continue
		}

		if derr := e.dispatch(sock, string(data)); derr != nil {
			slog.Debug("phxsock: invalid frame, closing connection", slog.Any("error", derr))
			return derr
		}

		select {
		case <-done:
			return nil
		default:
		}
	}
}

// dispatch decodes one inbound text frame and routes it by event kind. A
// decode failure terminates the connection; no other failure tears it down.
// An unmatched join topic and a handler error are surfaced to the client as
// an error reply; a custom event with no matching channel or handler is
// dropped without a reply.
func (e *Endpoint[Tag]) dispatch(sock *Socket, text string) error {
	frame, err := DecodeFrame(text)
	if err != nil {
		return err
	}

	switch {
	case frame.Event == EventJoin:
		e.handleJoin(sock, frame)
	case frame.Event == EventLeave:
		e.handleLeave(sock, frame)
	case frame.Event == EventHeartbeat:
		e.handleHeartbeat(sock, frame)
	case frame.Event.IsCustom():
		e.handleCustom(sock, frame)
	default:
		// phx_reply / phx_close inbound are ignored.
	}
	return nil
}

func (e *Endpoint[Tag]) handleJoin(sock *Socket, frame *Frame) {
	sock.setLastFrame(frame)

	ch := e.channels.resolve(frame.Topic)
	if ch == nil {
		e.sendReply(sock, frame, EventReply, ErrResponse(ErrUnmatchedTopic.Error()))
		return
	}

	reply, err := ch.invokeJoin(frame.Topic, frame.Payload, sock)
	if err == nil {
		e.reg.join(e.path, frame.Topic, sock.ID())
		sock.setJoined(frame.Topic)
	}

	e.sendReply(sock, frame, EventReply, IntoResponse(reply, err))
}

func (e *Endpoint[Tag]) handleLeave(sock *Socket, frame *Frame) {
	sock.setLastFrame(frame)

	e.sendReply(sock, frame, EventReply, OkResponse(map[string]any{}))
	e.reg.leave(e.path, frame.Topic, sock.ID())
	e.sendReply(sock, frame, EventClose, NoReply)
}

func (e *Endpoint[Tag]) handleHeartbeat(sock *Socket, frame *Frame) {
	sock.setLastFrame(frame)
	e.sendReply(sock, frame, EventHeartbeat, OkResponse(map[string]any{}))
}

func (e *Endpoint[Tag]) handleCustom(sock *Socket, frame *Frame) {
	ch := e.channels.resolve(frame.Topic)
	if ch == nil {
		return
	}
	handler, ok := ch.handlerFor(frame.Event.Name())
	if !ok {
		return
	}

	sock.setLastFrame(frame)
	reply, err := handler(frame.Payload, sock)
	resp := IntoResponse(reply, err)
	if resp.IsNoReply() {
		return
	}
	e.sendReply(sock, frame, EventReply, resp)
}

func (e *Endpoint[Tag]) sendReply(sock *Socket, inFrame *Frame, event Event, resp Response) {
	out := &Frame{Event: event, Payload: resp}
	out.Merge(inFrame)
	if err := sock.pushMessage(out); err != nil {
		slog.Warn("phxsock: failed to deliver reply", slog.Any("error", err), slog.String("topic", string(inFrame.Topic)))
	}
}

func queryToPayload(values url.Values) Payload {
	out := map[string]any{}
	for k, v := range values {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		arr := make([]any, len(v))
		for i, s := range v {
			arr[i] = s
		}
		out[k] = arr
	}
	return out
}

func writeConnectError(w http.ResponseWriter, err error) {
	var he *HTTPError
	if errors.As(err, &he) {
		w.WriteHeader(he.Status)
		if he.Body != "" {
			_, _ = w.Write([]byte(he.Body))
		}
		return
	}
	w.WriteHeader(http.StatusForbidden)
}
