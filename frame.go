package phxsock

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMessage is the sentinel wrapped by every frame decode failure;
// match it with errors.Is.
var ErrInvalidMessage = errors.New("invalid message")

// DecodeError reports why a wire message could not be decoded into a
// Frame, along with the offending source text.
type DecodeError struct {
	Reason string
	Source string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid message: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidMessage
}

func invalidMessage(reason, source string) *DecodeError {
	return &DecodeError{Reason: reason, Source: source}
}

// Frame is the 5-tuple wire message: [join_ref, msg_ref, topic, event,
// payload]. JoinRef and MsgRef are nullable client-chosen correlation
// tokens; Topic and Event are required.
type Frame struct {
	JoinRef *string
	MsgRef  *string
	Topic   Topic
	Event   Event
	Payload Payload
}

// DecodeFrame parses a UTF-8 text wire message into a Frame.
func DecodeFrame(src string) (*Frame, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return nil, invalidMessage("not a JSON array", src)
	}
	if len(raw) != 5 {
		return nil, invalidMessage("expected a 5-element array", src)
	}

	f := &Frame{}
	f.JoinRef = decodeOptionalString(raw[0])
	f.MsgRef = decodeOptionalString(raw[1])

	topic := decodeOptionalString(raw[2])
	if topic == nil {
		return nil, invalidMessage("topic is required", src)
	}
	f.Topic = Topic(*topic)

	event := decodeOptionalString(raw[3])
	if event == nil {
		return nil, invalidMessage("event is required", src)
	}
	f.Event = ParseEvent(*event)

	var payload any
	if err := json.Unmarshal(raw[4], &payload); err != nil {
		return nil, invalidMessage("payload is not valid JSON", src)
	}
	f.Payload = payload

	return f, nil
}

// decodeOptionalString reads an element that is a string if present, or
// null otherwise: a number, bool, array, or object at this position
// degrades to nil rather than failing the decode. Only topic and event
// are required strings; join_ref and msg_ref are best-effort.
func decodeOptionalString(raw json.RawMessage) *string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// Encode renders a Frame as the 5-element wire array.
func (f *Frame) Encode() ([]byte, error) {
	arr := [5]any{
		refToAny(f.JoinRef),
		refToAny(f.MsgRef),
		string(f.Topic),
		f.Event.String(),
		f.Payload,
	}
	return json.Marshal(arr)
}

func refToAny(ref *string) any {
	if ref == nil {
		return nil
	}
	return *ref
}

// Merge copies join_ref, msg_ref, and topic from a reference inbound frame
// onto f; payload and event are left untouched. This is how every reply
// correlates with the client request that elicited it.
func (f *Frame) Merge(in *Frame) {
	if in == nil {
		return
	}
	f.JoinRef = in.JoinRef
	f.MsgRef = in.MsgRef
	f.Topic = in.Topic
}
