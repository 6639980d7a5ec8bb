package engine

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// SubmissionQueue is an unbounded multi-producer single-consumer FIFO
// with cooperative shutdown. Producers never block; the single
// consumer blocks in Pop until an order arrives or the queue shuts
// down. The order in which Push calls acquire the internal mutex is
// the authoritative time for price-time priority.
type SubmissionQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	orders   deque.Deque[*orderbook.Order]
	shutdown bool
}

func NewSubmissionQueue() *SubmissionQueue {
	q := &SubmissionQueue{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends the order to the tail and wakes a waiting consumer.
// Orders pushed after Shutdown are dropped.
func (q *SubmissionQueue) Push(order *orderbook.Order) {
	q.mu.Lock()
	if q.shutdown {
		q.mu.Unlock()
		return
	}
	q.orders.PushBack(order)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// Pop removes the order at the head, blocking while the queue is empty
// and not shut down. It returns false only once the queue is both
// empty and shut down: everything enqueued before Shutdown drains
// first.
func (q *SubmissionQueue) Pop() (*orderbook.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.orders.Len() == 0 && !q.shutdown {
		q.notEmpty.Wait()
	}
	if q.orders.Len() == 0 {
		return nil, false
	}
	return q.orders.PopFront(), true
}

// Shutdown marks the queue shut down and wakes every waiter.
// Idempotent.
func (q *SubmissionQueue) Shutdown() {
	q.mu.Lock()
	q.shutdown = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// Len returns the number of queued orders.
func (q *SubmissionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.orders.Len()
}
