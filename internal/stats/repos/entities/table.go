// Package entities holds the deduplicating registries for domains, clients
// and forward destinations. A Table maps a normalized key to a stable integer
// ID assigned in first-seen order; entries are never removed or renumbered.
//
// Tables are not safe for concurrent use. The classifier owns them and
// serializes every access under its lock.
package entities

import "slices"

// DefaultReserve is the growth step used when a Table is built with a
// non-positive reserve.
const DefaultReserve = 64

// Table is a growable, append-only registry of T keyed by string.
type Table[T any] struct {
	entries []T
	index   map[string]int
	reserve int
	create  func(key string) T
}

// New returns an empty Table. create builds the zero-initialized entry for a
// new key; reserve is how many slots are added whenever the table is full.
func New[T any](reserve int, create func(key string) T) *Table[T] {
	if reserve <= 0 {
		reserve = DefaultReserve
	}
	return &Table[T]{
		entries: make([]T, 0, reserve),
		index:   make(map[string]int, reserve),
		reserve: reserve,
		create:  create,
	}
}

// FindOrCreate returns the ID of key, appending a new entry when the key has
// not been seen before. created reports whether an entry was appended.
func (t *Table[T]) FindOrCreate(key string) (id int, created bool) {
	if id, ok := t.index[key]; ok {
		return id, false
	}
	t.ensureCapacity()
	id = len(t.entries)
	t.entries = append(t.entries, t.create(key))
	t.index[key] = id
	return id, true
}

// Find returns the ID of key without creating it.
func (t *Table[T]) Find(key string) (int, bool) {
	id, ok := t.index[key]
	return id, ok
}

// ensureCapacity grows the backing array by the reserve step when the next
// append would not fit. Existing entries keep their positions and IDs.
func (t *Table[T]) ensureCapacity() {
	if len(t.entries) < cap(t.entries) {
		return
	}
	t.entries = slices.Grow(t.entries, t.reserve)
}

// Get returns a pointer to the entry with the given ID. The pointer is only
// valid until the next FindOrCreate.
func (t *Table[T]) Get(id int) (*T, bool) {
	if id < 0 || id >= len(t.entries) {
		return nil, false
	}
	return &t.entries[id], true
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return len(t.entries)
}

// Cap returns the number of slots reserved, used or not.
func (t *Table[T]) Cap() int {
	return cap(t.entries)
}

// Snapshot returns a copy of all entries in ID order.
func (t *Table[T]) Snapshot() []T {
	return slices.Clone(t.entries)
}
