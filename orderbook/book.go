// Package orderbook implements a single symbol's two-sided limit order book
// (C3) under an optimistic concurrency protocol: any number of goroutines
// may plan a match concurrently against a read-only snapshot (PlanCross),
// but only one plan at a time is allowed to actually apply (Commit), and it
// is applied only if the book's version has not moved since the plan was
// taken.
package orderbook

import (
	"container/list"
	"sync"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"matchkernel/domain"
)

// PlannedTrade is one prospective trade produced by PlanCross. It names the
// two resting/incoming orders involved and the quantity and price the
// commit step should apply, but does not itself mutate anything.
type PlannedTrade struct {
	Bid   *domain.Order
	Ask   *domain.Order
	Qty   int64
	Price int64
}

// Book is one symbol's order book: a bid side and an ask side, each a
// red-black tree keyed by price, each price level a FIFO queue of orders in
// arrival order. Version is bumped on every state change (Insert or
// committed Commit) and is the optimistic-concurrency stamp PlanCross
// callers must present back to Commit.
type Book struct {
	mu      sync.RWMutex
	version uint64
	bids    *rbt.Tree[int64, *PriceLevel] // best = highest price
	asks    *rbt.Tree[int64, *PriceLevel] // best = lowest price
}

// New returns an empty book.
func New() *Book {
	bidCmp := func(a, b int64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	}
	askCmp := func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return &Book{
		bids: rbt.NewWith[int64, *PriceLevel](bidCmp),
		asks: rbt.NewWith[int64, *PriceLevel](askCmp),
	}
}

// Version returns the book's current optimistic-concurrency stamp.
func (b *Book) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// BestBid returns the highest resting bid price and whether one exists.
func (b *Book) BestBid() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	node := b.bids.Left()
	if node == nil {
		return 0, false
	}
	return node.Key, true
}

// BestAsk returns the lowest resting ask price and whether one exists.
func (b *Book) BestAsk() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	node := b.asks.Left()
	if node == nil {
		return 0, false
	}
	return node.Key, true
}

// Insert adds order to the appropriate side of the book, splicing it into
// its price level's FIFO queue at the position its Arrival dictates, and
// bumps the version. Arrival values are handed out before the book's lock
// is acquired, so two concurrent Insert calls for the same price can reach
// this method in either order regardless of which holds the lower Arrival;
// PushBack alone would let whichever wins the lock race queue-jump. Walking
// the list to find Arrival's correct slot (as
// original_source/Stockengine.py's _insert_order_sorted does by comparing
// timestamp) keeps price-time priority correct under concurrency, not just
// under the call order of a single-threaded test.
func (b *Book) Insert(order *domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.asks
	if order.Side == domain.SideBuy {
		tree = b.bids
	}

	level, found := tree.Get(order.Price)
	if !found {
		level = newPriceLevel(order.Price)
		tree.Put(order.Price, level)
	}

	var elem *list.Element
	for e := level.Orders.Back(); e != nil; e = e.Prev() {
		if e.Value.(*domain.Order).Arrival <= order.Arrival {
			elem = level.Orders.InsertAfter(order, e)
			break
		}
	}
	if elem == nil {
		elem = level.Orders.PushFront(order)
	}
	order.ListElement = elem
	b.version++
}

// cursor walks one side's price levels in priority order (best first,
// per the tree's comparator), skipping price levels and individual orders
// that have gone inactive since they were inserted but not yet swept by a
// commit's bounded cleanup.
type cursor struct {
	it    rbt.Iterator[int64, *PriceLevel]
	level *PriceLevel
	elem  *list.Element
	ok    bool
}

func newCursor(it rbt.Iterator[int64, *PriceLevel]) *cursor {
	c := &cursor{it: it}
	c.seek()
	return c
}

// seek advances the underlying tree iterator until it finds a price level
// with at least one active order, or exhausts the tree.
func (c *cursor) seek() {
	for c.it.Next() {
		lvl := c.it.Value()
		e := firstActive(lvl.Orders)
		if e != nil {
			c.level = lvl
			c.elem = e
			c.ok = true
			return
		}
	}
	c.ok = false
	c.level = nil
	c.elem = nil
}

func firstActive(l *list.List) *list.Element {
	e := l.Front()
	for e != nil && !e.Value.(*domain.Order).Active() {
		e = e.Next()
	}
	return e
}

func (c *cursor) order() *domain.Order {
	if !c.ok {
		return nil
	}
	return c.elem.Value.(*domain.Order)
}

// advance moves to the next active order, within the current level if one
// remains, otherwise on to the next non-empty level. Advancing an exhausted
// cursor is an invariant violation and panics.
func (c *cursor) advance() {
	if !c.ok {
		panic("orderbook: cursor advanced past the end of its side")
	}
	e := c.elem.Next()
	for e != nil && !e.Value.(*domain.Order).Active() {
		e = e.Next()
	}
	if e != nil {
		c.elem = e
		return
	}
	c.seek()
}

// restingPrice resolves the price a crossing trade executes at: the side
// that arrived first was resting in the book and sets the price; a tie
// (arrival sequences are unique in practice, but the comparison must still
// total) resolves to the ask.
func restingPrice(bid, ask *domain.Order) int64 {
	if bid.Arrival < ask.Arrival {
		return bid.Price
	}
	return ask.Price
}

// PlanCross computes, from a consistent read-only snapshot of the book, the
// sequence of trades a match would produce right now. It mutates nothing:
// not the orders it walks, not the book. The returned version is the stamp
// the caller must pass to Commit; if the book changes between PlanCross and
// Commit, Commit fails and the caller is expected to retry.
func (b *Book) PlanCross() (version uint64, plan []PlannedTrade, touchedBid, touchedAsk map[int64]struct{}, hasCross bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	version = b.version
	touchedBid = make(map[int64]struct{})
	touchedAsk = make(map[int64]struct{})

	bc := newCursor(b.bids.Iterator())
	ac := newCursor(b.asks.Iterator())

	// remaining tracks quantity consumed by this plan only; it never
	// touches the orders themselves, so concurrent planners never
	// interfere with each other or with the book.
	remaining := make(map[uint64]int64)
	remOf := func(o *domain.Order) int64 {
		if v, ok := remaining[o.ID]; ok {
			return v
		}
		return o.RemainingQty()
	}

	for bc.ok && ac.ok {
		bid := bc.order()
		ask := ac.order()
		if bid.Price < ask.Price {
			break
		}

		bq := remOf(bid)
		aq := remOf(ask)
		qty := bq
		if aq < qty {
			qty = aq
		}
		if qty <= 0 {
			break
		}

		plan = append(plan, PlannedTrade{
			Bid:   bid,
			Ask:   ask,
			Qty:   qty,
			Price: restingPrice(bid, ask),
		})
		touchedBid[bid.Price] = struct{}{}
		touchedAsk[ask.Price] = struct{}{}

		remaining[bid.ID] = bq - qty
		remaining[ask.ID] = aq - qty

		if remaining[bid.ID] == 0 {
			bc.advance()
		}
		if remaining[ask.ID] == 0 {
			ac.advance()
		}
	}

	hasCross = len(plan) > 0
	return version, plan, touchedBid, touchedAsk, hasCross
}

// Commit applies plan if the book's version still matches expectedVersion,
// then performs bounded cleanup: only the price levels the plan actually
// touched are swept for now-inactive orders, never the whole book. It
// reports whether the plan was applied.
func (b *Book) Commit(expectedVersion uint64, plan []PlannedTrade, touchedBid, touchedAsk map[int64]struct{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.version != expectedVersion {
		return false
	}

	for _, t := range plan {
		t.Bid.Fill(t.Qty)
		t.Ask.Fill(t.Qty)
	}

	for price := range touchedBid {
		cleanupLevel(b.bids, price)
	}
	for price := range touchedAsk {
		cleanupLevel(b.asks, price)
	}

	b.version++
	return true
}

func cleanupLevel(tree *rbt.Tree[int64, *PriceLevel], price int64) {
	level, found := tree.Get(price)
	if !found {
		return
	}
	for e := level.Orders.Front(); e != nil; {
		next := e.Next()
		o := e.Value.(*domain.Order)
		if !o.Active() {
			level.Orders.Remove(e)
			o.ListElement = nil
		}
		e = next
	}
	if level.Orders.Len() == 0 {
		tree.Remove(price)
	}
}
