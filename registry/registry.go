// Package registry implements the symbol registry (C1): a grow-only,
// thread-safe mapping between symbol strings and dense integer indices.
package registry

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrCapacityExceeded is returned by IndexOf when every slot is assigned.
var ErrCapacityExceeded = errors.New("registry: capacity exceeded")

// ErrUnknownSymbol is returned by SymbolOf for an index that was never
// assigned. It is never produced by IndexOf, which auto-assigns.
var ErrUnknownSymbol = errors.New("registry: unknown symbol index")

// snapshot is the immutable, atomically-swapped view readers load: byName
// and byIndex are always published together, in the same Store, so a
// reader can never observe one half of an assignment without the other.
type snapshot struct {
	byName  map[string]int
	byIndex []string
}

// Registry maps symbol strings to indices in [0, max). Lookups are
// lock-free; assignment of a new symbol takes a short mutual-exclusion
// section. Two concurrent IndexOf calls for the same unseen symbol always
// agree on exactly one assigned index. Readers load an immutable snapshot
// held in an atomic.Value; an insert copies it and stores the new one.
type Registry struct {
	max int

	mu   sync.Mutex // guards assignment only; readers never take it
	snap atomic.Value // holds *snapshot
	next atomic.Int64
}

// New returns a Registry with capacity for max symbols.
func New(max int) *Registry {
	r := &Registry{max: max}
	r.snap.Store(&snapshot{
		byName:  map[string]int{},
		byIndex: make([]string, 0, max),
	})
	return r
}

// IndexOf returns the index of symbol, assigning the lowest unassigned slot
// if symbol has not been seen before. Concurrent calls for the same new
// symbol return the same index exactly once.
func (r *Registry) IndexOf(symbol string) (int, error) {
	if idx, ok := r.snap.Load().(*snapshot).byName[symbol]; ok {
		return idx, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the lock: another goroutine may have assigned it
	// while we were waiting.
	cur := r.snap.Load().(*snapshot)
	if idx, ok := cur.byName[symbol]; ok {
		return idx, nil
	}

	if len(cur.byName) >= r.max {
		return 0, ErrCapacityExceeded
	}

	idx := int(r.next.Load())
	r.next.Add(1)

	newNames := make(map[string]int, len(cur.byName)+1)
	for k, v := range cur.byName {
		newNames[k] = v
	}
	newNames[symbol] = idx

	newIndices := make([]string, len(cur.byIndex), len(cur.byIndex)+1)
	copy(newIndices, cur.byIndex)
	newIndices = append(newIndices, symbol)

	// Published in one Store: a concurrent SymbolOf can never observe the
	// name assigned without the index also being resolvable, or vice versa.
	r.snap.Store(&snapshot{byName: newNames, byIndex: newIndices})

	return idx, nil
}

// SymbolOf returns the symbol assigned to idx, or ErrUnknownSymbol if idx
// has never been assigned.
func (r *Registry) SymbolOf(idx int) (string, error) {
	indices := r.snap.Load().(*snapshot).byIndex
	if idx < 0 || idx >= len(indices) {
		return "", ErrUnknownSymbol
	}
	return indices[idx], nil
}
