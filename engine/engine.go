// Package engine implements the Submission Front (C7): the single external
// entry point collaborators use to submit orders, resolve symbols, and read
// the trade journal.
package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"matchkernel/domain"
	"matchkernel/idgen"
	"matchkernel/journal"
	"matchkernel/matching"
	"matchkernel/orderbook"
	"matchkernel/registry"
)

// PriceScale is the number of decimal places preserved when converting a
// submitted price into the integer tick representation used internally for
// exact comparison.
const PriceScale = 4

// DefaultMaxSymbols is the default capacity of the symbol registry.
const DefaultMaxSymbols = 1024

// Exchange wires together the symbol registry, per-symbol order books, the
// matching engine, the trade journal, and ID allocation behind a single
// submission entry point.
type Exchange struct {
	symbols *registry.Registry
	ids     *idgen.Generator
	books   []*orderbook.Book
	matcher *matching.Engine
	trades  *journal.TradeJournal
}

// New returns an Exchange with room for maxSymbols distinct symbols. If
// maxSymbols <= 0, DefaultMaxSymbols is used. maxRetries bounds each match
// attempt's retry loop; 0 selects matching.DefaultMaxRetries.
func New(maxSymbols, maxRetries int) *Exchange {
	if maxSymbols <= 0 {
		maxSymbols = DefaultMaxSymbols
	}

	books := make([]*orderbook.Book, maxSymbols)
	for i := range books {
		books[i] = orderbook.New()
	}
	trades := journal.New()

	return &Exchange{
		symbols: registry.New(maxSymbols),
		ids:     idgen.New(),
		books:   books,
		matcher: matching.New(books, trades, maxRetries),
		trades:  trades,
	}
}

// Submit validates and accepts a new order, inserts it into its symbol's
// book, triggers a matching attempt, and returns the allocated order ID
// regardless of whether the order filled, partially filled, or rested.
func (e *Exchange) Submit(side domain.Side, symbol string, qty int64, price decimal.Decimal) (uint64, error) {
	if side != domain.SideBuy && side != domain.SideSell {
		return 0, ErrInvalidInput
	}
	if symbol == "" {
		return 0, ErrInvalidInput
	}
	if qty <= 0 {
		return 0, ErrInvalidInput
	}
	if price.Sign() <= 0 {
		return 0, ErrInvalidInput
	}
	ticks := price.Shift(PriceScale).Round(0).IntPart()
	if ticks <= 0 {
		return 0, ErrInvalidInput
	}

	idx, err := e.symbols.IndexOf(symbol)
	if err != nil {
		if errors.Is(err, registry.ErrCapacityExceeded) {
			return 0, ErrCapacityExceeded
		}
		return 0, err
	}

	id := e.ids.Next()
	arrival := e.ids.Next()

	order := domain.NewOrder(id, side, idx, qty, ticks, arrival)
	e.books[idx].Insert(order)

	e.matcher.Match(idx)

	return id, nil
}

// Match runs one matching attempt for the symbol at idx, returning whatever
// trades were committed (nil if none). Collaborators normally never need to
// call this directly: Submit already triggers it.
func (e *Exchange) Match(idx int) []domain.Trade {
	return e.matcher.Match(idx)
}

// JournalSnapshot returns every trade committed so far, in commit order.
func (e *Exchange) JournalSnapshot() []domain.Trade {
	return e.trades.Snapshot()
}

// IndexOf resolves symbol to its index, assigning one if it has not been
// seen before.
func (e *Exchange) IndexOf(symbol string) (int, error) {
	idx, err := e.symbols.IndexOf(symbol)
	if err != nil {
		if errors.Is(err, registry.ErrCapacityExceeded) {
			return 0, ErrCapacityExceeded
		}
		return 0, err
	}
	return idx, nil
}

// SymbolOf reverse-resolves idx to the symbol assigned to it.
func (e *Exchange) SymbolOf(idx int) (string, error) {
	sym, err := e.symbols.SymbolOf(idx)
	if err != nil {
		return "", ErrUnknownSymbol
	}
	return sym, nil
}
