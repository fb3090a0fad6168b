package gpu

import "slices"

// growable is an append-only array that is reset every frame. Its backing
// storage only ever grows, so steady-state frames do not allocate.
type growable[T any] struct {
	items []T
}

// reserve guarantees room for n more items without reallocating.
func (g *growable[T]) reserve(n int) {
	g.items = slices.Grow(g.items, n)
}

// append adds items at the end.
func (g *growable[T]) append(items ...T) {
	g.items = append(g.items, items...)
}

// reset empties the array and keeps its capacity.
func (g *growable[T]) reset() {
	clear(g.items)
	g.items = g.items[:0]
}

func (g *growable[T]) len() int { return len(g.items) }

func (g *growable[T]) cap() int { return cap(g.items) }

// view exposes the live items. Callers must not retain it across appends.
func (g *growable[T]) view() []T { return g.items }
