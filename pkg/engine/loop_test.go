package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func TestEngineMatchesThroughQueue(t *testing.T) {
	log := NewTradeLog()
	e := New(&Config{Sink: log})
	e.Start()

	if err := e.Submit(&orderbook.Order{ID: 1, Side: orderbook.BUY, Price: 105, Qty: 10}); err != nil {
		t.Fatalf("submit buy: %v", err)
	}
	if err := e.Submit(&orderbook.Order{ID: 2, Side: orderbook.SELL, Price: 100, Qty: 10}); err != nil {
		t.Fatalf("submit sell: %v", err)
	}
	e.Stop()

	trades := log.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %+v", trades)
	}
	if trades[0].BuyOrderID != 1 || trades[0].SellOrderID != 2 || trades[0].Price != 100 {
		t.Errorf("unexpected trade %+v", trades[0])
	}
	if !e.Empty() {
		t.Error("expected empty book after stop")
	}
}

func TestEngineNoLossNoDuplication(t *testing.T) {
	// N producers, K orders each; every order sells 1@100 or buys
	// 1@100, so all quantity crosses and the trade count accounts for
	// every submission exactly once.
	const producers = 8
	const perProducer = 500

	log := NewTradeLog()
	e := New(&Config{Sink: log})
	e.Start()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				side := orderbook.BUY
				if p%2 == 0 {
					side = orderbook.SELL
				}
				err := e.Submit(&orderbook.Order{
					ID:    uint64(p*perProducer + i + 1),
					Side:  side,
					Price: 100,
					Qty:   1,
				})
				if err != nil {
					t.Errorf("submit: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	e.Stop()

	var traded uint64
	for _, tr := range log.Trades() {
		traded += uint64(tr.Qty)
	}
	// Half the producers buy, half sell, equal quantity both sides.
	want := uint64(producers / 2 * perProducer)
	if traded != want {
		t.Errorf("traded qty %d, want %d", traded, want)
	}
	if !e.Empty() {
		t.Error("book should be flat after symmetric flow")
	}
}

func TestEngineGracefulShutdownDrains(t *testing.T) {
	log := NewTradeLog()
	e := New(&Config{Sink: log})
	e.Start()

	const pairs = 2000
	for i := range pairs {
		e.Submit(&orderbook.Order{ID: uint64(2*i + 1), Side: orderbook.BUY, Price: 100, Qty: 5})
		e.Submit(&orderbook.Order{ID: uint64(2*i + 2), Side: orderbook.SELL, Price: 100, Qty: 5})
	}
	e.Stop()

	if got := log.Len(); got != pairs {
		t.Errorf("expected %d trades after Stop, got %d", pairs, got)
	}
	if e.QueueDepth() != 0 {
		t.Errorf("queue not drained: %d left", e.QueueDepth())
	}
}

func TestEngineSubmitAfterStop(t *testing.T) {
	e := New(nil)
	e.Start()
	e.Stop()

	err := e.Submit(&orderbook.Order{ID: 1, Side: orderbook.BUY, Price: 100, Qty: 1})
	if !errors.Is(err, ErrEngineStopped) {
		t.Errorf("expected ErrEngineStopped, got %v", err)
	}
}

func TestEngineStopIdempotent(t *testing.T) {
	e := New(nil)
	e.Start()
	e.Stop()
	e.Stop()
}

func TestEngineStopBeforeStart(t *testing.T) {
	e := New(nil)
	e.Stop()

	if err := e.Submit(&orderbook.Order{ID: 1, Side: orderbook.BUY, Price: 100, Qty: 1}); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("expected ErrEngineStopped, got %v", err)
	}
}

func TestEngineDoubleStartPanics(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on second Start")
		}
	}()
	e.Start()
}

func TestEngineSubmitRejectsContract(t *testing.T) {
	e := New(nil)
	e.Start()
	defer e.Stop()

	if err := e.Submit(&orderbook.Order{ID: 1, Side: orderbook.BUY, Price: 100, Qty: 0}); !errors.Is(err, orderbook.ErrInvalidQty) {
		t.Errorf("expected ErrInvalidQty, got %v", err)
	}
	if err := e.Submit(&orderbook.Order{ID: 2, Side: orderbook.BUY, Price: -1, Qty: 1}); !errors.Is(err, orderbook.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestEngineTradesArriveInProductionOrder(t *testing.T) {
	sink := NewChannelSink(16)
	e := New(&Config{Sink: sink})
	e.Start()

	e.Submit(&orderbook.Order{ID: 1, Side: orderbook.SELL, Price: 100, Qty: 5})
	e.Submit(&orderbook.Order{ID: 2, Side: orderbook.SELL, Price: 100, Qty: 5})
	e.Submit(&orderbook.Order{ID: 3, Side: orderbook.BUY, Price: 100, Qty: 10})
	e.Stop()
	sink.Close()

	var sells []uint64
	for tr := range sink.Trades() {
		sells = append(sells, tr.SellOrderID)
	}
	if len(sells) != 2 || sells[0] != 1 || sells[1] != 2 {
		t.Errorf("expected sells [1 2] in order, got %v", sells)
	}
}
