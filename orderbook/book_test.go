package orderbook

import (
	"testing"

	"matchkernel/domain"
)

func buy(id uint64, qty, price int64, arrival uint64) *domain.Order {
	return domain.NewOrder(id, domain.SideBuy, 0, qty, price, arrival)
}

func sell(id uint64, qty, price int64, arrival uint64) *domain.Order {
	return domain.NewOrder(id, domain.SideSell, 0, qty, price, arrival)
}

func TestInsertOrdersBestBidAndAsk(t *testing.T) {
	b := New()
	b.Insert(buy(1, 10, 100, 1))
	b.Insert(buy(2, 10, 105, 2))
	b.Insert(sell(3, 10, 110, 3))
	b.Insert(sell(4, 10, 108, 4))

	bid, ok := b.BestBid()
	if !ok || bid != 105 {
		t.Fatalf("expected best bid 105, got %d (ok=%v)", bid, ok)
	}
	ask, ok := b.BestAsk()
	if !ok || ask != 108 {
		t.Fatalf("expected best ask 108, got %d (ok=%v)", ask, ok)
	}
}

func TestPlanCrossNoOverlapProducesNoPlan(t *testing.T) {
	b := New()
	b.Insert(buy(1, 10, 99, 1))
	b.Insert(sell(2, 10, 100, 2))

	_, plan, _, _, hasCross := b.PlanCross()
	if hasCross || len(plan) != 0 {
		t.Fatalf("expected no cross, got plan %+v", plan)
	}
}

func TestPlanAndCommitFullFill(t *testing.T) {
	b := New()
	bidOrder := buy(1, 10, 100, 1)
	askOrder := sell(2, 10, 100, 2)
	b.Insert(bidOrder)
	b.Insert(askOrder)

	version, plan, touchedBid, touchedAsk, hasCross := b.PlanCross()
	if !hasCross || len(plan) != 1 {
		t.Fatalf("expected one planned trade, got %+v", plan)
	}
	if plan[0].Qty != 10 {
		t.Fatalf("expected full fill qty 10, got %d", plan[0].Qty)
	}
	// bid arrived first, so the resting price is the bid's price.
	if plan[0].Price != 100 {
		t.Fatalf("expected resting price 100, got %d", plan[0].Price)
	}

	ok := b.Commit(version, plan, touchedBid, touchedAsk)
	if !ok {
		t.Fatalf("expected commit to succeed")
	}
	if bidOrder.Active() || askOrder.Active() {
		t.Fatalf("expected both orders fully filled and inactive")
	}

	if _, has := b.BestBid(); has {
		t.Fatalf("expected empty bid side after full fill and cleanup")
	}
	if _, has := b.BestAsk(); has {
		t.Fatalf("expected empty ask side after full fill and cleanup")
	}
}

func TestCommitRejectsStaleVersion(t *testing.T) {
	b := New()
	b.Insert(buy(1, 10, 100, 1))
	b.Insert(sell(2, 10, 100, 2))

	version, plan, touchedBid, touchedAsk, hasCross := b.PlanCross()
	if !hasCross {
		t.Fatalf("expected a cross")
	}

	// A concurrent insert bumps the version before we commit.
	b.Insert(buy(3, 5, 101, 3))

	if ok := b.Commit(version, plan, touchedBid, touchedAsk); ok {
		t.Fatalf("expected stale commit to be rejected")
	}
}

func TestPlanCrossRespectsFIFOWithinPriceLevel(t *testing.T) {
	b := New()
	b.Insert(buy(1, 5, 100, 1))
	b.Insert(buy(2, 5, 100, 2))
	b.Insert(sell(3, 5, 100, 3))

	version, plan, touchedBid, touchedAsk, hasCross := b.PlanCross()
	if !hasCross || len(plan) != 1 {
		t.Fatalf("expected one planned trade against the earlier bid, got %+v", plan)
	}
	if plan[0].Bid.ID != 1 {
		t.Fatalf("expected earliest-arrived bid (id 1) to trade first, got id %d", plan[0].Bid.ID)
	}

	if ok := b.Commit(version, plan, touchedBid, touchedAsk); !ok {
		t.Fatalf("expected commit to succeed")
	}

	bid, ok := b.BestBid()
	if !ok || bid != 100 {
		t.Fatalf("expected remaining bid at 100, got %d (ok=%v)", bid, ok)
	}
	if _, has := b.BestAsk(); has {
		t.Fatalf("expected ask side empty")
	}
}

func TestInsertOrdersByArrivalNotCallOrder(t *testing.T) {
	b := New()
	// Order 2 has the later arrival but reaches Insert first, as would
	// happen if it won the race for the book's lock after both arrivals
	// were already allocated.
	b.Insert(buy(2, 5, 100, 2))
	b.Insert(buy(1, 5, 100, 1))
	b.Insert(sell(3, 5, 100, 3))

	_, plan, _, _, hasCross := b.PlanCross()
	if !hasCross || len(plan) != 1 {
		t.Fatalf("expected one planned trade, got %+v", plan)
	}
	if plan[0].Bid.ID != 1 {
		t.Fatalf("expected the earlier-arrival order (id 1) to trade first despite reaching Insert second, got id %d", plan[0].Bid.ID)
	}
}

func TestInsertSplicesIntoMiddleOfExistingLevel(t *testing.T) {
	b := New()
	b.Insert(buy(1, 5, 100, 1))
	b.Insert(buy(3, 5, 100, 3))
	// Arrival 2 reaches Insert last but belongs between orders 1 and 3.
	b.Insert(buy(2, 5, 100, 2))

	level, found := b.bids.Get(100)
	if !found {
		t.Fatalf("expected a price level at 100")
	}
	var ids []uint64
	for e := level.Orders.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*domain.Order).ID)
	}
	want := []uint64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("expected 3 orders in arrival order, got %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected FIFO order %v, got %v", want, ids)
		}
	}
}

func TestPlanCrossPartialFillLeavesRemainder(t *testing.T) {
	b := New()
	b.Insert(buy(1, 10, 100, 1))
	b.Insert(sell(2, 4, 100, 2))

	version, plan, touchedBid, touchedAsk, hasCross := b.PlanCross()
	if !hasCross || len(plan) != 1 || plan[0].Qty != 4 {
		t.Fatalf("expected a single 4-unit trade, got %+v", plan)
	}

	if ok := b.Commit(version, plan, touchedBid, touchedAsk); !ok {
		t.Fatalf("expected commit to succeed")
	}

	bid, ok := b.BestBid()
	if !ok || bid != 100 {
		t.Fatalf("expected bid to remain resting with a partial fill")
	}
	if _, has := b.BestAsk(); has {
		t.Fatalf("expected fully-filled ask removed from the book")
	}
}

func TestPlanCrossSkipsInactiveOrders(t *testing.T) {
	b := New()
	stale := buy(1, 10, 100, 1)
	b.Insert(stale)
	stale.Fill(10) // marks inactive without going through Commit's cleanup

	fresh := buy(2, 10, 100, 2)
	b.Insert(fresh)
	b.Insert(sell(3, 10, 100, 3))

	_, plan, _, _, hasCross := b.PlanCross()
	if !hasCross || len(plan) != 1 {
		t.Fatalf("expected one trade skipping the inactive order, got %+v", plan)
	}
	if plan[0].Bid.ID != 2 {
		t.Fatalf("expected the active order (id 2) to trade, got id %d", plan[0].Bid.ID)
	}
}
