package phxsock

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIntoResponse(t *testing.T) {
	tests := []struct {
		name       string
		reply      any
		err        error
		wantNoNoop bool // true if we expect NoReply
	}{
		{name: "nil reply, nil err is NoReply", reply: nil, err: nil, wantNoNoop: true},
		{name: "reply that marshals to null is NoReply", reply: (*int)(nil), err: nil, wantNoNoop: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntoResponse(tt.reply, tt.err)
			if got.IsNoReply() != tt.wantNoNoop {
				t.Errorf("IntoResponse(%v, %v).IsNoReply() = %v, want %v", tt.reply, tt.err, got.IsNoReply(), tt.wantNoNoop)
			}
		})
	}
}

func TestIntoResponseOk(t *testing.T) {
	got := IntoResponse("x", nil)
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"status":"ok","response":"x"}`
	if string(encoded) != want {
		t.Errorf("got %s, want %s", encoded, want)
	}
}

func TestIntoResponseErrJSON(t *testing.T) {
	got := IntoResponse(nil, errors.New(`{"k":1}`))
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"status":"error","response":{"k":1}}`
	if string(encoded) != want {
		t.Errorf("got %s, want %s", encoded, want)
	}
}

func TestIntoResponseErrPlain(t *testing.T) {
	got := IntoResponse(nil, errors.New("plain"))
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"status":"error","response":"plain"}`
	if string(encoded) != want {
		t.Errorf("got %s, want %s", encoded, want)
	}
}

func TestResponseMarshalNoReplyIsNull(t *testing.T) {
	encoded, err := json.Marshal(NoReply)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(encoded) != "null" {
		t.Errorf("got %s, want null", encoded)
	}
}
