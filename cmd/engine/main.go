package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

func main() {
	fmt.Println("Matching engine starting.....")

	log := engine.NewTradeLog()
	fanout := engine.NewFanoutSink(log, engine.SinkFunc(func(trade orderbook.Trade) {
		fmt.Printf(" TRADES => %d @ %d | BUY Order ID %d | SELL Order ID %d\n",
			trade.Qty, trade.Price, trade.BuyOrderID, trade.SellOrderID)
	}))

	e := engine.New(&engine.Config{Sink: fanout})
	e.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Seed flow plus a few concurrent producers.
	e.Submit(&orderbook.Order{ID: 1, Side: orderbook.BUY, Price: 1005, Qty: 100})
	e.Submit(&orderbook.Order{ID: 2, Side: orderbook.SELL, Price: 1000, Qty: 70})
	e.Submit(&orderbook.Order{ID: 3, Side: orderbook.SELL, Price: 500, Qty: 30})

	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				side := orderbook.BUY
				if (p+i)%2 == 0 {
					side = orderbook.SELL
				}
				e.Submit(&orderbook.Order{
					ID:    uint64(1000 + p*1000 + i),
					Side:  side,
					Price: int64(995 + i%11),
					Qty:   uint32(1 + i%50),
				})
			}
		}()
	}
	wg.Wait()

	fmt.Println("Producers done. Press Ctrl+C to exit.")
	<-sigs

	fmt.Println("Shutting down...")
	e.Stop()

	fmt.Printf("Total trades: %d\n", log.Len())
	fmt.Println("Exited cleanly.")
}
