package phxsock

// eventKind is the closed set of built-in protocol events; everything else
// is represented as Custom.
type eventKind int

const (
	eventKindJoin eventKind = iota
	eventKindLeave
	eventKindClose
	eventKindReply
	eventKindHeartbeat
	eventKindCustom
)

// Event is the closed variant {Join, Leave, Close, Reply, Heartbeat,
// Custom(string)}. Values are compared by ==.
type Event struct {
	kind eventKind
	name string // only meaningful when kind == eventKindCustom
}

var (
	EventJoin      = Event{kind: eventKindJoin}
	EventLeave     = Event{kind: eventKindLeave}
	EventClose     = Event{kind: eventKindClose}
	EventReply     = Event{kind: eventKindReply}
	EventHeartbeat = Event{kind: eventKindHeartbeat}
)

// CustomEvent builds the Custom(name) variant for an application-defined
// event name.
func CustomEvent(name string) Event {
	return Event{kind: eventKindCustom, name: name}
}

// IsCustom reports whether this is the Custom(name) variant.
func (e Event) IsCustom() bool {
	return e.kind == eventKindCustom
}

// Name returns the custom event name, or "" if this is not a Custom event.
func (e Event) Name() string {
	if e.kind == eventKindCustom {
		return e.name
	}
	return ""
}

// ParseEvent maps a wire event string to its canonical Event: phx_join,
// phx_leave, phx_close (also "close"), phx_reply (also "reply"),
// heartbeat; anything else becomes Custom.
func ParseEvent(wire string) Event {
	switch wire {
	case "phx_join":
		return EventJoin
	case "phx_leave":
		return EventLeave
	case "phx_close", "close":
		return EventClose
	case "phx_reply", "reply":
		return EventReply
	case "heartbeat":
		return EventHeartbeat
	default:
		return CustomEvent(wire)
	}
}

// String renders the canonical phx_* wire form of the event.
func (e Event) String() string {
	switch e.kind {
	case eventKindJoin:
		return "phx_join"
	case eventKindLeave:
		return "phx_leave"
	case eventKindClose:
		return "phx_close"
	case eventKindReply:
		return "phx_reply"
	case eventKindHeartbeat:
		return "heartbeat"
	default:
		return e.name
	}
}
