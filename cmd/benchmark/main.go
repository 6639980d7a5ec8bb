package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	numProducers = 8
	numOrders    = 1_000_000
	minPrice     = 10000
	maxPrice     = 20000
	minQty       = 1
	maxQty       = 100
)

func randomOrder(rng *rand.Rand, id uint64) *orderbook.Order {
	side := orderbook.BUY
	if rng.Intn(2) == 0 {
		side = orderbook.SELL
	}

	return &orderbook.Order{
		ID:        id,
		Side:      side,
		Price:     int64(minPrice + rng.Intn(maxPrice-minPrice+1)),
		Qty:       uint32(rng.Intn(maxQty-minQty+1) + minQty),
		Timestamp: uint64(time.Now().UnixNano()),
	}
}

func main() {
	totalMatched := 0
	totalQty := int64(0)
	e := engine.New(&engine.Config{
		Sink: engine.SinkFunc(func(trade orderbook.Trade) {
			totalMatched++
			totalQty += int64(trade.Qty)
		}),
	})
	e.Start()

	start := time.Now()

	var wg sync.WaitGroup
	perProducer := numOrders / numProducers
	for p := range numProducers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(p + 1)))
			for i := range perProducer {
				order := randomOrder(rng, uint64(p*perProducer+i+1))
				if err := e.Submit(order); err != nil {
					panic(err)
				}
			}
		}()
	}
	wg.Wait()
	e.Stop()

	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Matches    : %d\n", totalMatched)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Throughput       : %.0f orders/sec\n", float64(numOrders)/elapsed.Seconds())
}
