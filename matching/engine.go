// Package matching implements the optimistic matching protocol (C4): plan
// a cross against a consistent snapshot of a symbol's book, then try to
// commit it, retrying on version conflict up to a bounded number of times.
package matching

import (
	"time"

	"matchkernel/domain"
	"matchkernel/journal"
	"matchkernel/orderbook"
)

// DefaultMaxRetries bounds the number of plan/commit attempts a single
// Match call will make before giving up silently, matching the retry
// ceiling of the system this engine reimplements.
const DefaultMaxRetries = 10

// Engine runs the match loop for a fixed set of per-symbol order books,
// recording every trade it commits into a shared journal.
type Engine struct {
	books      []*orderbook.Book
	journal    *journal.TradeJournal
	maxRetries int
}

// New returns an Engine over books, appending committed trades to j. If
// maxRetries is <= 0, DefaultMaxRetries is used.
func New(books []*orderbook.Book, j *journal.TradeJournal, maxRetries int) *Engine {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Engine{books: books, journal: j, maxRetries: maxRetries}
}

// Match attempts to cross the book for symbolIndex, retrying under
// contention. It returns the trades committed by this call, or nil if no
// cross was available or every retry lost the optimistic race. A nil
// return is not an error: it means there was nothing to match, or a
// concurrent committer kept winning the race within the retry budget.
func (e *Engine) Match(symbolIndex int) []domain.Trade {
	book := e.books[symbolIndex]

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		version, plan, touchedBid, touchedAsk, hasCross := book.PlanCross()
		if !hasCross {
			return nil
		}

		if !book.Commit(version, plan, touchedBid, touchedAsk) {
			continue // lost the race to a concurrent insert or commit; retry
		}

		now := time.Now().UnixNano()
		trades := make([]domain.Trade, len(plan))
		for i, t := range plan {
			trades[i] = domain.Trade{
				BuyID:     t.Bid.ID,
				SellID:    t.Ask.ID,
				SymbolIdx: symbolIndex,
				Qty:       t.Qty,
				Price:     t.Price,
				Ts:        now,
			}
		}
		e.journal.Append(trades)
		return trades
	}

	return nil
}
