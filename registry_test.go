package phxsock

import (
	"encoding/json"
	"testing"
)

func TestRegistryJoinLeaveMembership(t *testing.T) {
	reg := newRegistry()
	reg.join("/ws", "room:lobby", "conn-1")
	reg.join("/ws", "room:lobby", "conn-2")

	members := reg.membersOf("/ws", "room:lobby")
	if len(members) != 2 {
		t.Fatalf("membersOf() = %v, want 2 members", members)
	}

	reg.leave("/ws", "room:lobby", "conn-1")
	members = reg.membersOf("/ws", "room:lobby")
	if len(members) != 1 || members[0] != "conn-2" {
		t.Errorf("membersOf() after leave = %v, want [conn-2]", members)
	}
}

func TestRegistryRemoveConnectionCleansUpEverywhere(t *testing.T) {
	reg := newRegistry()
	reg.registerSender("conn-1", make(chan []byte, 1))
	reg.join("/ws", "room:lobby", "conn-1")
	reg.join("/ws", "room:other", "conn-1")

	reg.removeConnection("conn-1")

	if _, ok := reg.senders["conn-1"]; ok {
		t.Errorf("senders still has conn-1 after removeConnection")
	}
	if members := reg.membersOf("/ws", "room:lobby"); len(members) != 0 {
		t.Errorf("room:lobby members = %v, want empty", members)
	}
	if members := reg.membersOf("/ws", "room:other"); len(members) != 0 {
		t.Errorf("room:other members = %v, want empty", members)
	}
}

func TestDoBroadcastExcludesSender(t *testing.T) {
	reg := newRegistry()
	a := make(chan []byte, 1)
	b := make(chan []byte, 1)
	reg.registerSender("A", a)
	reg.registerSender("B", b)
	reg.join("/ws", "room:1", "A")
	reg.join("/ws", "room:1", "B")

	if err := reg.doBroadcast("A", "/ws", "room:1", "msg", OkResponse(map[string]any{"x": 1}), nil); err != nil {
		t.Fatalf("doBroadcast() error: %v", err)
	}

	select {
	case msg := <-b:
		var decoded []any
		if err := json.Unmarshal(msg, &decoded); err != nil {
			t.Fatalf("decode broadcast frame: %v", err)
		}
		if decoded[3] != "msg" {
			t.Errorf("event = %v, want msg", decoded[3])
		}
		payload, ok := decoded[4].(map[string]any)
		if !ok || payload["status"] != "ok" {
			t.Errorf("payload = %v, want status ok", decoded[4])
		}
	default:
		t.Errorf("B did not receive the broadcast")
	}

	select {
	case <-a:
		t.Errorf("A (the excluded sender) should not receive its own broadcast")
	default:
	}
}

func TestDoBroadcastSkipsDisconnectedMember(t *testing.T) {
	reg := newRegistry()
	live := make(chan []byte, 1)
	reg.registerSender("live", live)
	reg.join("/ws", "room:1", "live")
	reg.join("/ws", "room:1", "gone") // no sender registered

	if err := reg.doBroadcast("", "/ws", "room:1", "msg", "hi", nil); err != nil {
		t.Fatalf("doBroadcast() error: %v", err)
	}

	select {
	case <-live:
	default:
		t.Errorf("live member did not receive the broadcast")
	}
}

func TestDoBroadcastNoopWithoutTopic(t *testing.T) {
	reg := newRegistry()
	if err := reg.doBroadcast("", "/ws", "", "msg", "hi", nil); err != nil {
		t.Errorf("doBroadcast() with empty topic should be a no-op, got error: %v", err)
	}
}
