// Package journal implements the append-only trade journal (C6).
package journal

import (
	"sync"

	"matchkernel/domain"
)

// TradeJournal records every executed trade in the order it was committed.
// Append and Snapshot may be called concurrently from any number of
// goroutines.
type TradeJournal struct {
	mu     sync.RWMutex
	trades []domain.Trade
}

// New returns an empty journal.
func New() *TradeJournal {
	return &TradeJournal{}
}

// Append adds trades to the journal, in order.
func (j *TradeJournal) Append(trades []domain.Trade) {
	if len(trades) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, trades...)
}

// Snapshot returns a copy of every trade recorded so far, in commit order.
// The caller owns the returned slice; mutating it does not affect the
// journal.
func (j *TradeJournal) Snapshot() []domain.Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]domain.Trade, len(j.trades))
	copy(out, j.trades)
	return out
}

// Len reports how many trades have been recorded.
func (j *TradeJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.trades)
}
