// Package externalref implements the external-reference table: a
// stable, ordered, deduplicating registry of host-side pointers (C
// function pointers, host object addresses) that a serialized
// snapshot can reference by small integer index instead of embedding
// an address that would be invalid on the next process run.
package externalref

import (
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
)

// Ref is an opaque, comparable reference value. In practice this is a
// uintptr-sized host pointer, but any comparable value naming a
// host-side external works (a function value's reflect identity, a
// registered callback ID, and so on).
type Ref uintptr

// Table is an ordered registry of Refs. Index 0 is reserved for a
// leading sentinel entry (Ref 0); real references start at index 1.
// The list carries no trailing terminator entry.
type Table struct {
	mu      sync.RWMutex
	byRef   map[Ref]int
	entries []Ref
}

// New creates an empty Table. Entries list starts with the sentinel
// occupying index 0 so real references are never assigned it.
func New() *Table {
	return &Table{
		byRef:   make(map[Ref]int),
		entries: []Ref{0},
	}
}

// Register returns the stable index for ref, assigning the next
// available index (starting at 1) if this is the first time ref has
// been seen. Registering the sentinel value 0 is rejected: it would
// collide with the sentinel at index 0.
func (t *Table) Register(ref Ref) (int, error) {
	if ref == 0 {
		return 0, embederr.Validation("external reference 0 is reserved for the sentinel entry")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.byRef[ref]; ok {
		return idx, nil
	}

	idx := len(t.entries)
	t.byRef[ref] = idx
	t.entries = append(t.entries, ref)
	return idx, nil
}

// At returns the reference registered at idx. Index 0 always reports
// the sentinel (0, true).
func (t *Table) At(idx int) (Ref, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || idx >= len(t.entries) {
		return 0, false
	}
	return t.entries[idx], true
}

// IndexOf returns the index already assigned to ref, if registered.
func (t *Table) IndexOf(ref Ref) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.byRef[ref]
	return idx, ok
}

// Len reports the number of real (non-sentinel) registered references.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - 1
}

// Entries returns a copy of the full wire-order entry list, including
// the leading sentinel at index 0.
func (t *Table) Entries() []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Ref, len(t.entries))
	copy(out, t.entries)
	return out
}

// FromEntries rebuilds a Table from a wire-order entry list as read
// back from a snapshot, including the leading sentinel.
func FromEntries(entries []Ref) (*Table, error) {
	if len(entries) == 0 || entries[0] != 0 {
		return nil, embederr.Serialization("external reference table must begin with the sentinel entry")
	}

	t := New()
	for i, ref := range entries[1:] {
		if ref == 0 {
			return nil, embederr.Serialization("external reference table contains an embedded sentinel").WithDetails("index", i+1)
		}
		if _, dup := t.byRef[ref]; dup {
			return nil, embederr.Serialization("external reference table contains a duplicate entry").WithDetails("index", i+1)
		}
		idx := len(t.entries)
		t.byRef[ref] = idx
		t.entries = append(t.entries, ref)
	}
	return t, nil
}
