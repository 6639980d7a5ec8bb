package engine

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Engine serializes concurrent submitters into a single deterministic
// matching stream. Producers push into the submission queue from any
// goroutine; exactly one consumer goroutine owns the book, runs
// matching after every submission, and publishes trades to the sink.
// The book itself carries no locks because it is only ever reached
// through the queue.
type Engine struct {
	matcher *MatchingEngine
	queue   *SubmissionQueue
	sink    TradeSink
	log     *logging.Logger

	started atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
}

type Config struct {
	// Sink receives every trade on the consumer goroutine, in
	// production order. Optional; trades are dropped when nil.
	Sink TradeSink

	Logger *logging.Logger
}

func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &Engine{
		matcher: NewMatchingEngine(),
		queue:   NewSubmissionQueue(),
		sink:    cfg.Sink,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start spawns the consumer goroutine. Starting twice is a programmer
// error and panics.
func (e *Engine) Start() {
	if !e.started.CompareAndSwap(false, true) {
		panic("engine: Start called twice")
	}
	go e.loop()
}

// Stop shuts the submission queue down and waits for the consumer to
// drain everything already enqueued. Idempotent; a second Stop is a
// no-op. Submissions racing with Stop either drain or are dropped by
// the queue, never lost half-processed.
func (e *Engine) Stop() {
	if !e.stopped.CompareAndSwap(false, true) {
		return
	}
	e.queue.Shutdown()
	if e.started.Load() {
		<-e.done
	}
}

// Submit enqueues the order for the consumer goroutine. The contract
// is checked here so producers get the rejection instead of the loop.
func (e *Engine) Submit(order *orderbook.Order) error {
	if e.stopped.Load() {
		return ErrEngineStopped
	}
	if err := order.Validate(); err != nil {
		return err
	}
	e.queue.Push(order)
	return nil
}

// QueueDepth returns the number of submissions awaiting the consumer.
func (e *Engine) QueueDepth() int {
	return e.queue.Len()
}

// Empty reports whether the book holds no resting orders. Only
// meaningful once the queue has drained.
func (e *Engine) Empty() bool {
	return e.matcher.Empty()
}

func (e *Engine) loop() {
	defer close(e.done)
	ctx := context.Background()

	for {
		order, ok := e.queue.Pop()
		if !ok {
			return
		}

		if err := e.matcher.Submit(order); err != nil {
			// Submit already filters the contract; reaching here means
			// a producer bypassed it.
			e.log.Warn(ctx, "order rejected by book",
				zap.Uint64("order_id", order.ID), zap.Error(err))
			continue
		}

		trades, err := e.matcher.PollTrades()
		if e.sink != nil {
			for _, trade := range trades {
				e.sink.Accept(trade)
			}
		}
		if err != nil {
			e.log.Error(ctx, "match aborted",
				zap.Uint64("order_id", order.ID), zap.Error(err))
		}
	}
}
