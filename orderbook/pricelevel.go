package orderbook

import "container/list"

// PriceLevel holds every resting order at a single price, in arrival order.
// Orders.Front() is always the oldest (and next to trade) order at this
// price.
type PriceLevel struct {
	Price  int64
	Orders *list.List
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
	}
}
