package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func TestQueueFIFO(t *testing.T) {
	q := NewSubmissionQueue()
	for i := range 100 {
		q.Push(&orderbook.Order{ID: uint64(i)})
	}
	q.Shutdown()

	for i := range 100 {
		order, ok := q.Pop()
		if !ok {
			t.Fatalf("queue drained early at %d", i)
		}
		if order.ID != uint64(i) {
			t.Fatalf("expected order %d, got %d", i, order.ID)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected Pop to return false after drain")
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewSubmissionQueue()

	got := make(chan uint64, 1)
	go func() {
		order, ok := q.Pop()
		if ok {
			got <- order.ID
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(&orderbook.Order{ID: 42})

	select {
	case id := <-got:
		if id != 42 {
			t.Errorf("expected order 42, got %d", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Push")
	}
}

func TestQueueShutdownWakesWaiters(t *testing.T) {
	q := NewSubmissionQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Shutdown()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop on empty shut-down queue must return false")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Shutdown")
	}
}

func TestQueueDrainsBeforeFalse(t *testing.T) {
	q := NewSubmissionQueue()
	for i := range 10 {
		q.Push(&orderbook.Order{ID: uint64(i)})
	}
	q.Shutdown()
	q.Push(&orderbook.Order{ID: 999}) // dropped

	n := 0
	for {
		order, ok := q.Pop()
		if !ok {
			break
		}
		if order.ID == 999 {
			t.Error("push after shutdown must not be delivered")
		}
		n++
	}
	if n != 10 {
		t.Errorf("expected 10 drained orders, got %d", n)
	}
}

func TestQueueShutdownIdempotent(t *testing.T) {
	q := NewSubmissionQueue()
	q.Shutdown()
	q.Shutdown()

	if _, ok := q.Pop(); ok {
		t.Error("expected false from Pop after shutdown")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewSubmissionQueue()

	const producers = 8
	const perProducer = 1000

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push(&orderbook.Order{ID: uint64(p*perProducer + i)})
			}
		}()
	}

	seen := make(map[uint64]bool)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for {
			order, ok := q.Pop()
			if !ok {
				return
			}
			if seen[order.ID] {
				t.Errorf("duplicate order %d", order.ID)
			}
			seen[order.ID] = true
		}
	}()

	wg.Wait()
	q.Shutdown()
	<-consumed

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d orders, got %d", producers*perProducer, len(seen))
	}
}
