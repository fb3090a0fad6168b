package slotmap

import (
	"errors"
	"testing"
)

func TestMapInsertGet(t *testing.T) {
	m := New[string](4)
	a := m.Insert("a")
	b := m.Insert("b")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	got, err := m.Get(a)
	if err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}
	if *got != "a" {
		t.Errorf("Get(a) = %q, want %q", *got, "a")
	}
	got, err = m.Get(b)
	if err != nil {
		t.Fatalf("Get(b) failed: %v", err)
	}
	if *got != "b" {
		t.Errorf("Get(b) = %q, want %q", *got, "b")
	}
}

func TestMapGetMutatesInPlace(t *testing.T) {
	m := New[int](0)
	h := m.Insert(1)

	p, err := m.Get(h)
	if err != nil {
		t.Fatal(err)
	}
	*p = 42

	p, _ = m.Get(h)
	if *p != 42 {
		t.Errorf("value = %d, want 42", *p)
	}
}

func TestMapRemoveInvalidatesHandle(t *testing.T) {
	m := New[int](0)
	h := m.Insert(7)

	v, err := m.Remove(h)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if v != 7 {
		t.Errorf("Remove returned %d, want 7", v)
	}
	if _, err := m.Get(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Get after Remove: err = %v, want ErrStaleHandle", err)
	}
	if _, err := m.Remove(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("double Remove: err = %v, want ErrStaleHandle", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestMapSlotReuseBumpsGeneration(t *testing.T) {
	m := New[int](0)
	old := m.Insert(1)
	if _, err := m.Remove(old); err != nil {
		t.Fatal(err)
	}
	fresh := m.Insert(2)

	if fresh.index != old.index {
		t.Fatalf("expected slot reuse: old=%s fresh=%s", old, fresh)
	}
	if fresh.gen == old.gen {
		t.Fatalf("generation not bumped: %s", fresh)
	}
	if m.Contains(old) {
		t.Error("old handle still resolves after slot reuse")
	}
	v, err := m.Get(fresh)
	if err != nil || *v != 2 {
		t.Errorf("Get(fresh) = %v, %v; want 2, nil", v, err)
	}
}

func TestMapZeroHandle(t *testing.T) {
	m := New[int](0)
	m.Insert(1)

	var zero Handle
	if !zero.IsZero() {
		t.Error("IsZero() = false for zero handle")
	}
	if m.Contains(zero) {
		t.Error("zero handle resolves")
	}
}

func TestMapAllOrderAndBreak(t *testing.T) {
	m := New[int](0)
	hs := []Handle{m.Insert(10), m.Insert(20), m.Insert(30)}
	if _, err := m.Remove(hs[1]); err != nil {
		t.Fatal(err)
	}

	var got []int
	for h, v := range m.All() {
		if !m.Contains(h) {
			t.Errorf("All yielded dead handle %s", h)
		}
		got = append(got, *v)
	}
	if len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Errorf("All() = %v, want [10 30]", got)
	}

	n := 0
	for range m.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iteration did not stop on break, n = %d", n)
	}
}

func TestMapClear(t *testing.T) {
	m := New[int](0)
	a := m.Insert(1)
	m.Insert(2)
	m.Clear()

	if m.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", m.Len())
	}
	if m.Contains(a) {
		t.Error("handle survived Clear")
	}
	m.Insert(3)
	if m.Len() != 1 {
		t.Errorf("Len() = %d after reinsert, want 1", m.Len())
	}
}
