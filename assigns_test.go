package phxsock

import "testing"

func TestAssignsSetGet(t *testing.T) {
	a := newAssigns()

	AssignsSet(a, "count", 1)
	if v, ok := AssignsGet[int](a, "count"); !ok || v != 1 {
		t.Errorf("AssignsGet[int](count) = %v, %v; want 1, true", v, ok)
	}

	if _, ok := AssignsGet[string](a, "count"); ok {
		t.Errorf("AssignsGet[string](count) should miss: key was inserted as int")
	}

	if _, ok := AssignsGet[int](a, "missing"); ok {
		t.Errorf("AssignsGet[int](missing) should miss")
	}
}

func TestAssignsCoexistByType(t *testing.T) {
	a := newAssigns()

	AssignsSet(a, "user", 42)
	AssignsSet(a, "user", "alice")

	n, ok := AssignsGet[int](a, "user")
	if !ok || n != 42 {
		t.Errorf("AssignsGet[int](user) = %v, %v; want 42, true", n, ok)
	}

	s, ok := AssignsGet[string](a, "user")
	if !ok || s != "alice" {
		t.Errorf("AssignsGet[string](user) = %v, %v; want alice, true", s, ok)
	}
}

func TestAssignsReplaceSameType(t *testing.T) {
	a := newAssigns()

	AssignsSet(a, "count", 1)
	AssignsSet(a, "count", 2)

	v, ok := AssignsGet[int](a, "count")
	if !ok || v != 2 {
		t.Errorf("AssignsGet[int](count) = %v, %v; want 2, true", v, ok)
	}
}
