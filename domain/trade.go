package domain

// Trade is an immutable record of one executed match. Once appended to the
// trade journal it is never mutated; callers must treat it as read-only.
type Trade struct {
	BuyID     uint64
	SellID    uint64
	SymbolIdx int
	Qty       int64
	Price     int64 // ticks
	Ts        int64 // unix nanoseconds, execution time
}
