// Package nameindex implements a bijective name/index table that
// interns repeated strings (property names, module specifiers, type
// tags) as small integers.
package nameindex

import (
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
)

// Table is a bijective name<->index registry. Indexes are assigned in
// insertion order starting at zero and are stable for the life of the
// table; names are never reassigned to a different index.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]int
	byIndex []string
	frozen  bool
}

// New creates an empty Table.
func New() *Table {
	return &Table{byName: make(map[string]int)}
}

// Intern returns the index for name, assigning it the next available
// index if it hasn't been seen before. Intern on a frozen table
// returns an error if name is not already registered.
func (t *Table) Intern(name string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.byName[name]; ok {
		return idx, nil
	}
	if t.frozen {
		return 0, embederr.Validation("name index is frozen; unknown name cannot be interned").WithDetails("name", name)
	}

	idx := len(t.byIndex)
	t.byName[name] = idx
	t.byIndex = append(t.byIndex, name)
	return idx, nil
}

// Lookup returns the index already assigned to name, without
// interning it if absent.
func (t *Table) Lookup(name string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.byName[name]
	return idx, ok
}

// Name returns the name registered at idx.
func (t *Table) Name(idx int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || idx >= len(t.byIndex) {
		return "", false
	}
	return t.byIndex[idx], true
}

// Len reports the number of registered names.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byIndex)
}

// Freeze prevents further names from being interned; existing
// name<->index mappings remain valid, so a finished table cannot
// silently grow.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Names returns a copy of all registered names in index order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.byIndex))
	copy(out, t.byIndex)
	return out
}

// FromNames rebuilds a Table from an ordered name list, such as one
// returned by Names. The table is frozen on return
// since a loaded table must not silently grow.
func FromNames(names []string) *Table {
	t := New()
	for i, n := range names {
		t.byName[n] = i
	}
	t.byIndex = append(t.byIndex, names...)
	t.frozen = true
	return t
}
