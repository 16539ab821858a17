// Command matchkernel is a minimal demonstration of the matching engine: it
// submits a handful of orders on a couple of symbols and prints the
// resulting trade journal.
package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"matchkernel/domain"
	"matchkernel/engine"
)

func main() {
	ex := engine.New(engine.DefaultMaxSymbols, 0)

	fmt.Println("matchkernel started")

	if _, err := ex.Submit(domain.SideSell, "AAPL", 100, decimal.NewFromFloat(189.50)); err != nil {
		fmt.Println("submit failed:", err)
	}
	fmt.Println("submitted sell: 100 AAPL @ 189.50")

	if _, err := ex.Submit(domain.SideBuy, "AAPL", 40, decimal.NewFromFloat(189.50)); err != nil {
		fmt.Println("submit failed:", err)
	}
	fmt.Println("submitted buy: 40 AAPL @ 189.50")

	if _, err := ex.Submit(domain.SideBuy, "AAPL", 80, decimal.NewFromFloat(190.00)); err != nil {
		fmt.Println("submit failed:", err)
	}
	fmt.Println("submitted buy: 80 AAPL @ 190.00")

	if _, err := ex.Submit(domain.SideBuy, "MSFT", 10, decimal.NewFromFloat(400.00)); err != nil {
		fmt.Println("submit failed:", err)
	}
	fmt.Println("submitted buy: 10 MSFT @ 400.00 (no resting sell, will rest)")

	for _, trade := range ex.JournalSnapshot() {
		symbol, err := ex.SymbolOf(trade.SymbolIdx)
		if err != nil {
			symbol = "?"
		}
		fmt.Printf("trade: %s qty=%d price=%s buy=%d sell=%d\n",
			symbol, trade.Qty, decimal.New(trade.Price, -engine.PriceScale).String(), trade.BuyID, trade.SellID)
	}
}
