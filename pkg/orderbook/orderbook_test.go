package orderbook

import (
	"errors"
	"fmt"
	"testing"
)

func mustAdd(t *testing.T, ob *OrderBook, o *Order) {
	t.Helper()
	if err := ob.AddOrder(o); err != nil {
		t.Fatalf("AddOrder(%+v): %v", o, err)
	}
}

func mustMatch(t *testing.T, ob *OrderBook) []Trade {
	t.Helper()
	trades, err := ob.Match()
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	return trades
}

func TestMatchEmptyBook(t *testing.T) {
	ob := NewOrderBook()

	trades := mustMatch(t, ob)
	if len(trades) != 0 {
		t.Errorf("expected no trades on empty book, got %+v", trades)
	}
	if !ob.Empty() {
		t.Error("expected empty book")
	}
}

func TestExactMatch(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 105, Qty: 10})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.BuyOrderID != 1 || tr.SellOrderID != 2 {
		t.Errorf("incorrect order IDs in trade: %+v", tr)
	}
	if tr.Price != 100 || tr.Qty != 10 {
		t.Errorf("incorrect price/qty: %+v", tr)
	}
	if !ob.Empty() {
		t.Error("expected empty book after exact match")
	}
}

func TestPartialFillBuyRests(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 105, Qty: 20})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 1 || trades[0].Qty != 10 || trades[0].Price != 100 {
		t.Fatalf("expected single 10@100 trade, got %+v", trades)
	}

	if ob.Empty() {
		t.Fatal("expected buy remainder to rest")
	}
	best, ok := ob.BestBid()
	if !ok || best != 105 {
		t.Errorf("expected best bid 105, got %d ok=%v", best, ok)
	}
	if ob.Depth(BUY) != 1 || ob.Depth(SELL) != 0 {
		t.Errorf("unexpected depth buy=%d sell=%d", ob.Depth(BUY), ob.Depth(SELL))
	}

	// Remainder must fill against a later sell.
	mustAdd(t, ob, &Order{ID: 3, Side: SELL, Price: 105, Qty: 10})
	trades = mustMatch(t, ob)
	if len(trades) != 1 || trades[0].BuyOrderID != 1 || trades[0].Qty != 10 {
		t.Fatalf("expected remainder fill of 10, got %+v", trades)
	}
}

func TestNoCross(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 99, Qty: 10})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %+v", trades)
	}
	if ob.Depth(BUY) != 1 || ob.Depth(SELL) != 1 {
		t.Error("both orders should rest")
	}
}

func TestFIFOAcrossLevels(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 105, Qty: 10})
	mustAdd(t, ob, &Order{ID: 2, Side: BUY, Price: 104, Qty: 10})
	mustAdd(t, ob, &Order{ID: 3, Side: SELL, Price: 100, Qty: 5})
	mustAdd(t, ob, &Order{ID: 4, Side: SELL, Price: 101, Qty: 10})
	mustAdd(t, ob, &Order{ID: 5, Side: SELL, Price: 102, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 4 {
		t.Fatalf("expected 4 trades, got %+v", trades)
	}

	wantSells := []uint64{3, 4, 4, 5}
	for i, want := range wantSells {
		if trades[i].SellOrderID != want {
			t.Errorf("trade %d: sell order %d, want %d", i, trades[i].SellOrderID, want)
		}
	}

	// Best bid fills first, its remainder before the next level.
	wantBuys := []uint64{1, 1, 2, 2}
	for i, want := range wantBuys {
		if trades[i].BuyOrderID != want {
			t.Errorf("trade %d: buy order %d, want %d", i, trades[i].BuyOrderID, want)
		}
	}
}

func TestTradePrintsAtAskPrice(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 110, Qty: 10})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 95, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 1 || trades[0].Price != 95 {
		t.Fatalf("expected trade at ask price 95, got %+v", trades)
	}
}

func TestEqualPricesCross(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 100, Qty: 10})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 1 || trades[0].Price != 100 {
		t.Fatalf("locked market should match at 100, got %+v", trades)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: SELL, Price: 100, Qty: 5})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 5})
	mustAdd(t, ob, &Order{ID: 3, Side: BUY, Price: 100, Qty: 10})

	trades := mustMatch(t, ob)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %+v", trades)
	}
	if trades[0].SellOrderID != 1 || trades[1].SellOrderID != 2 {
		t.Errorf("expected time priority within level, got %+v", trades)
	}
}

func TestMatchIdempotentOnQuiescentBook(t *testing.T) {
	ob := NewOrderBook()
	mustAdd(t, ob, &Order{ID: 1, Side: BUY, Price: 105, Qty: 20})
	mustAdd(t, ob, &Order{ID: 2, Side: SELL, Price: 100, Qty: 10})

	first := mustMatch(t, ob)
	if len(first) != 1 {
		t.Fatalf("expected 1 trade, got %+v", first)
	}
	second := mustMatch(t, ob)
	if len(second) != 0 {
		t.Errorf("second Match with no intervening add must be empty, got %+v", second)
	}
}

func TestNoCrossPostcondition(t *testing.T) {
	ob := NewOrderBook()
	for i := range 50 {
		side := BUY
		if i%2 == 0 {
			side = SELL
		}
		mustAdd(t, ob, &Order{
			ID:    uint64(i + 1),
			Side:  side,
			Price: int64(95 + i%11),
			Qty:   uint32(1 + i%7),
		})
	}
	mustMatch(t, ob)

	bid, hasBid := ob.BestBid()
	ask, hasAsk := ob.BestAsk()
	if hasBid && hasAsk && bid >= ask {
		t.Errorf("book still crossed after Match: bid=%d ask=%d", bid, ask)
	}
}

func TestQuantityConservation(t *testing.T) {
	ob := NewOrderBook()
	var buyQty, sellQty uint64
	for i := range 200 {
		qty := uint32(1 + i%13)
		if i%2 == 0 {
			buyQty += uint64(qty)
			mustAdd(t, ob, &Order{ID: uint64(i + 1), Side: BUY, Price: 100, Qty: qty})
		} else {
			sellQty += uint64(qty)
			mustAdd(t, ob, &Order{ID: uint64(i + 1), Side: SELL, Price: 100, Qty: qty})
		}
	}

	var traded uint64
	for _, tr := range mustMatch(t, ob) {
		traded += uint64(tr.Qty)
	}

	want := min(buyQty, sellQty)
	if traded != want {
		t.Errorf("traded qty %d, want min(%d, %d)=%d", traded, buyQty, sellQty, want)
	}
}

func TestAddOrderRejectsContractViolations(t *testing.T) {
	ob := NewOrderBook()

	if err := ob.AddOrder(&Order{ID: 1, Side: BUY, Price: 100, Qty: 0}); !errors.Is(err, ErrInvalidQty) {
		t.Errorf("zero qty: got %v, want ErrInvalidQty", err)
	}
	if err := ob.AddOrder(&Order{ID: 2, Side: SELL, Price: 0, Qty: 10}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("zero price: got %v, want ErrInvalidPrice", err)
	}
	if err := ob.AddOrder(&Order{ID: 3, Side: SELL, Price: -5, Qty: 10}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price: got %v, want ErrInvalidPrice", err)
	}
	if err := ob.AddOrder(&Order{ID: 4, Side: "HOLD", Price: 100, Qty: 10}); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("bad side: got %v, want ErrInvalidSide", err)
	}
	if !ob.Empty() {
		t.Error("rejected orders must not rest")
	}
}

func TestHighVolumeAlternating(t *testing.T) {
	ob := NewOrderBook()

	num := 10_000
	for i := range num {
		side := BUY
		if i%2 == 0 {
			side = SELL
		}
		mustAdd(t, ob, &Order{ID: uint64(i + 1), Side: side, Price: 100, Qty: 10})
	}

	trades := mustMatch(t, ob)
	if len(trades) != num/2 {
		t.Errorf("expected %d trades, got %d", num/2, len(trades))
	}
	if !ob.Empty() {
		t.Error("expected empty book")
	}
}

func BenchmarkMatchCrossedLevels(b *testing.B) {
	for b.Loop() {
		b.StopTimer()
		ob := NewOrderBook()
		for i := range 1000 {
			ob.AddOrder(&Order{ID: uint64(i + 1), Side: BUY, Price: int64(100 + i%10), Qty: 10})
			ob.AddOrder(&Order{ID: uint64(i + 1001), Side: SELL, Price: int64(95 + i%10), Qty: 10})
		}
		b.StartTimer()
		if _, err := ob.Match(); err != nil {
			b.Fatal(err)
		}
	}
}

func ExampleOrderBook_Match() {
	ob := NewOrderBook()
	ob.AddOrder(&Order{ID: 1, Side: BUY, Price: 1005, Qty: 100})
	ob.AddOrder(&Order{ID: 2, Side: SELL, Price: 1000, Qty: 70})
	ob.AddOrder(&Order{ID: 3, Side: SELL, Price: 500, Qty: 30})

	trades, _ := ob.Match()
	for _, tr := range trades {
		fmt.Printf("buy=%d sell=%d price=%d qty=%d\n", tr.BuyOrderID, tr.SellOrderID, tr.Price, tr.Qty)
	}
	// Output:
	// buy=1 sell=3 price=500 qty=30
	// buy=1 sell=2 price=1000 qty=70
}
