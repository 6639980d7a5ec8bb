package orderbook

import (
	"container/heap"
	"fmt"

	"github.com/gammazero/deque"
)

// OrderBook keeps the two half-books of a single instrument: bids
// iterated highest price first, asks lowest price first. Each price
// level is a FIFO of resting orders, so within a level time priority
// is insertion order.
//
// The book is not safe for concurrent use. All mutation must happen on
// the engine's consumer goroutine (see pkg/engine); that serialization
// is what makes matching deterministic.
type OrderBook struct {
	bids map[int64]*deque.Deque[*Order]
	asks map[int64]*deque.Deque[*Order]

	bidHeap *PriceHeap
	askHeap *PriceHeap
}

func NewOrderBook() *OrderBook {
	bidHeap := NewPriceHeap(func(i, j int64) bool { return i > j }) // Max-heap
	askHeap := NewPriceHeap(func(i, j int64) bool { return i < j }) // Min-heap

	return &OrderBook{
		bids:    make(map[int64]*deque.Deque[*Order]),
		asks:    make(map[int64]*deque.Deque[*Order]),
		bidHeap: bidHeap,
		askHeap: askHeap,
	}
}

// AddOrder appends the order to the tail of its side's level. No
// matching runs until Match is called, so callers may batch several
// submissions before polling.
func (ob *OrderBook) AddOrder(order *Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	if order.Side == BUY {
		ob.addToBook(ob.bids, ob.bidHeap, order)
	} else {
		ob.addToBook(ob.asks, ob.askHeap, order)
	}
	return nil
}

func (ob *OrderBook) addToBook(book map[int64]*deque.Deque[*Order], priceHeap *PriceHeap, order *Order) {
	if book[order.Price] == nil {
		book[order.Price] = &deque.Deque[*Order]{}
		heap.Push(priceHeap, order.Price)
	}
	book[order.Price].PushBack(order)
}

// Match repeatedly pairs the best bid with the best ask until the
// books no longer cross. Each trade prints at the head ask price and
// for the minimum of the two head quantities; exhausted orders leave
// their FIFO and exhausted levels leave the book.
//
// A corrupt book (empty FIFO at a live level, resting order with zero
// quantity) aborts the match; trades emitted before the abort are
// still returned alongside the error.
func (ob *OrderBook) Match() ([]Trade, error) {
	var trades []Trade

	for {
		bidPrice, ok := ob.bidHeap.Peek()
		if !ok {
			break
		}
		askPrice, ok := ob.askHeap.Peek()
		if !ok {
			break
		}
		if bidPrice < askPrice {
			break
		}

		bidQ, askQ := ob.bids[bidPrice], ob.asks[askPrice]
		if bidQ == nil || bidQ.Len() == 0 || askQ == nil || askQ.Len() == 0 {
			return trades, fmt.Errorf("%w: empty level bid=%d ask=%d", ErrCorruptBook, bidPrice, askPrice)
		}

		buy, sell := bidQ.Front(), askQ.Front()
		if buy.Qty == 0 || sell.Qty == 0 {
			return trades, fmt.Errorf("%w: zero-qty resting order buy=%d sell=%d", ErrCorruptBook, buy.ID, sell.ID)
		}

		qty := min(buy.Qty, sell.Qty)
		trades = append(trades, Trade{
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Price:       askPrice,
			Qty:         qty,
		})

		buy.Qty -= qty
		sell.Qty -= qty

		if buy.Qty == 0 {
			bidQ.PopFront()
			if bidQ.Len() == 0 {
				heap.Pop(ob.bidHeap)
				delete(ob.bids, bidPrice)
			}
		}
		if sell.Qty == 0 {
			askQ.PopFront()
			if askQ.Len() == 0 {
				heap.Pop(ob.askHeap)
				delete(ob.asks, askPrice)
			}
		}
	}

	return trades, nil
}

// Empty reports whether both half-books hold no resting orders.
func (ob *OrderBook) Empty() bool {
	return len(ob.bids) == 0 && len(ob.asks) == 0
}

// BestBid returns the highest resting bid price.
func (ob *OrderBook) BestBid() (int64, bool) {
	return ob.bidHeap.Peek()
}

// BestAsk returns the lowest resting ask price.
func (ob *OrderBook) BestAsk() (int64, bool) {
	return ob.askHeap.Peek()
}

// Depth returns the number of resting orders on one side.
func (ob *OrderBook) Depth(side Side) int {
	book := ob.asks
	if side == BUY {
		book = ob.bids
	}
	n := 0
	for _, q := range book {
		n += q.Len()
	}
	return n
}
