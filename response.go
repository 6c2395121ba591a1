package phxsock

import "encoding/json"

// responseKind is the closed Response variant.
type responseKind int

const (
	responseOk responseKind = iota
	responseErr
	responseNoReply
)

// Response is a handler result: Ok(v), Err(v), or NoReply.
type Response struct {
	kind responseKind
	body Payload
}

// NoReply is the Response emitted for a handler that produced nothing.
var NoReply = Response{kind: responseNoReply}

// OkResponse builds the Ok(v) variant.
func OkResponse(v Payload) Response {
	return Response{kind: responseOk, body: v}
}

// ErrResponse builds the Err(v) variant.
func ErrResponse(v Payload) Response {
	return Response{kind: responseErr, body: v}
}

// IsNoReply reports whether this Response carries no payload at all.
func (r Response) IsNoReply() bool {
	return r.kind == responseNoReply
}

// MarshalJSON implements the wire shape:
//
//	Ok(v)    -> {"status":"ok","response":v}
//	Err(v)   -> {"status":"error","response":v}
//	NoReply  -> null
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case responseOk:
		return json.Marshal(struct {
			Status   string  `json:"status"`
			Response Payload `json:"response"`
		}{Status: "ok", Response: r.body})
	case responseErr:
		return json.Marshal(struct {
			Status   string  `json:"status"`
			Response Payload `json:"response"`
		}{Status: "error", Response: r.body})
	default:
		return []byte("null"), nil
	}
}

// IntoResponse coerces a handler's (reply, err) return into a Response.
// These conversions are deterministic and must stay bit-exact — clients
// rely on them:
//
//   - err != nil:  Err(v), where err.Error() is first parsed as JSON and
//     used verbatim if that succeeds, else wrapped as a JSON string.
//   - err == nil, reply == nil:                    NoReply.
//   - err == nil, reply serializes to JSON null:    NoReply.
//   - err == nil, otherwise:                        Ok(reply).
func IntoResponse(reply any, err error) Response {
	if err != nil {
		msg := err.Error()
		var parsed any
		if jsonErr := json.Unmarshal([]byte(msg), &parsed); jsonErr == nil {
			return ErrResponse(parsed)
		}
		return ErrResponse(msg)
	}

	if reply == nil {
		return NoReply
	}

	encoded, marshalErr := json.Marshal(reply)
	if marshalErr == nil && string(encoded) == "null" {
		return NoReply
	}

	return OkResponse(reply)
}
