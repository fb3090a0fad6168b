// Package slotmap provides a generational arena: entities live in a dense
// slot array and are addressed by handles that carry the slot index plus a
// generation counter. Removing an entity bumps the generation of its slot,
// so every handle issued before the removal stops resolving.
//
// A Map is not safe for concurrent use.
package slotmap

import (
	"errors"
	"fmt"
	"iter"
)

// ErrStaleHandle is returned when a handle refers to a removed entity or was
// never issued by the map.
var ErrStaleHandle = errors.New("slotmap: stale or unknown handle")

// Handle addresses one entity of a Map. The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// String formats the handle as index@generation.
func (h Handle) String() string { return fmt.Sprintf("%d@%d", h.index, h.gen) }

// slot stores one entity. An odd generation marks an occupied slot.
type slot[T any] struct {
	value    T
	gen      uint32
	nextFree uint32 // index+1 of the next free slot, 0 terminates the list
}

func (s *slot[T]) occupied() bool { return s.gen&1 == 1 }

// Map is a generational arena of T values.
type Map[T any] struct {
	slots    []slot[T]
	freeHead uint32 // index+1 of the first free slot
	count    int
}

// New returns an empty map with room for capacity entities.
func New[T any](capacity int) *Map[T] {
	return &Map[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert stores v and returns its handle. Freed slots are reused before the
// slot array grows.
func (m *Map[T]) Insert(v T) Handle {
	var idx uint32
	if m.freeHead != 0 {
		idx = m.freeHead - 1
		m.freeHead = m.slots[idx].nextFree
	} else {
		m.slots = append(m.slots, slot[T]{})
		idx = uint32(len(m.slots) - 1) //nolint:gosec // slot count is bounded by memory
	}
	s := &m.slots[idx]
	s.value = v
	s.gen++
	s.nextFree = 0
	m.count++
	return Handle{index: idx, gen: s.gen}
}

// Get returns a pointer to the entity addressed by h. The pointer stays
// valid until the next Insert or Remove.
func (m *Map[T]) Get(h Handle) (*T, error) {
	s, err := m.resolve(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Contains reports whether h resolves to a live entity.
func (m *Map[T]) Contains(h Handle) bool {
	_, err := m.resolve(h)
	return err == nil
}

// Remove deletes the entity addressed by h and returns it.
func (m *Map[T]) Remove(h Handle) (T, error) {
	s, err := m.resolve(h)
	if err != nil {
		var zero T
		return zero, err
	}
	v := s.value
	var zero T
	s.value = zero
	s.gen++
	s.nextFree = m.freeHead
	m.freeHead = h.index + 1
	m.count--
	return v, nil
}

// Len returns the number of live entities.
func (m *Map[T]) Len() int { return m.count }

// Clear removes every entity. Outstanding handles become stale.
func (m *Map[T]) Clear() {
	for i := range m.slots {
		if m.slots[i].occupied() {
			_, _ = m.Remove(Handle{index: uint32(i), gen: m.slots[i].gen}) //nolint:gosec // i < len(slots)
		}
	}
}

// All iterates live entities in slot order.
func (m *Map[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range m.slots {
			s := &m.slots[i]
			if !s.occupied() {
				continue
			}
			if !yield(Handle{index: uint32(i), gen: s.gen}, &s.value) { //nolint:gosec // i < len(slots)
				return
			}
		}
	}
}

func (m *Map[T]) resolve(h Handle) (*slot[T], error) {
	if int(h.index) >= len(m.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := &m.slots[h.index]
	if !s.occupied() || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}
