package phxsock

// Payload is a transparent wrapper over a JSON value: it carries whatever
// a handler produced or the wire carried, unexamined by the framing layer.
// Go already treats `any` holding json.Marshal-able values this way, so
// Payload is an alias rather than a boxed struct — no copy or indirection
// is introduced at the boundary.
type Payload = any
