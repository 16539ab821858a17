package engine

import "errors"

// ErrInvalidInput is returned by Submit when qty, price, symbol, or side
// fails validation. No state is mutated.
var ErrInvalidInput = errors.New("engine: invalid input")

// ErrCapacityExceeded is returned by Submit (via the symbol registry) when
// every symbol slot is already assigned.
var ErrCapacityExceeded = errors.New("engine: symbol capacity exceeded")

// ErrUnknownSymbol is returned by SymbolOf for an index that was never
// assigned. Submit itself never returns it, since it auto-assigns symbols.
var ErrUnknownSymbol = errors.New("engine: unknown symbol")
