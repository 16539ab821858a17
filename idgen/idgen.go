// Package idgen allocates monotonically increasing, contention-tolerant
// unique integers. It backs both order-ID allocation and the order-arrival
// sequence used for price-time priority.
package idgen

import "sync/atomic"

// Generator hands out strictly increasing uint64 values starting at 1.
// A plain atomic fetch-add is a conforming implementation of the
// compare-and-swap loop described by the spec: every successful call
// returns a value strictly greater than every prior successful call,
// under arbitrary concurrent use.
type Generator struct {
	counter atomic.Uint64
}

// New returns a Generator whose first Next() call returns 1.
func New() *Generator {
	return &Generator{}
}

// Next returns the next unique value.
func (g *Generator) Next() uint64 {
	return g.counter.Add(1)
}
