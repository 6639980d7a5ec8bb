package engine

import (
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// MatchingEngine is a thin facade over a single OrderBook. Submit and
// PollTrades stay separate calls so a caller can batch submissions
// before running matching; the engine loop polls after every
// submission to keep latency down.
//
// Like the book it owns, a MatchingEngine must only be touched from
// one goroutine.
type MatchingEngine struct {
	book *orderbook.OrderBook
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{
		book: orderbook.NewOrderBook(),
	}
}

// Submit places the order on the book without matching.
func (e *MatchingEngine) Submit(order *orderbook.Order) error {
	return e.book.AddOrder(order)
}

// PollTrades runs matching and returns the trades produced.
func (e *MatchingEngine) PollTrades() ([]orderbook.Trade, error) {
	return e.book.Match()
}

// Empty reports whether the book holds no resting orders.
func (e *MatchingEngine) Empty() bool {
	return e.book.Empty()
}
