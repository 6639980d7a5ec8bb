package engine

import (
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// TradeSink receives trades on the engine's consumer goroutine, in the
// order they were produced. An implementation that hands trades to
// other goroutines must do its own synchronization; anything called
// inline should return quickly since it sits on the matching path.
type TradeSink interface {
	Accept(trade orderbook.Trade)
}

// SinkFunc adapts a function to TradeSink.
type SinkFunc func(orderbook.Trade)

func (f SinkFunc) Accept(trade orderbook.Trade) { f(trade) }

// FanoutSink forwards every trade to each registered sink in
// registration order.
type FanoutSink struct {
	sinks []TradeSink
}

func NewFanoutSink(sinks ...TradeSink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

// Register must not be called after the engine has started.
func (s *FanoutSink) Register(sink TradeSink) {
	s.sinks = append(s.sinks, sink)
}

func (s *FanoutSink) Accept(trade orderbook.Trade) {
	for _, sink := range s.sinks {
		sink.Accept(trade)
	}
}

// ChannelSink publishes trades to a buffered channel. Accept blocks
// once the buffer fills, which backpressures the engine loop; size the
// buffer for the consumer's worst lag.
type ChannelSink struct {
	ch chan orderbook.Trade
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan orderbook.Trade, buffer)}
}

func (s *ChannelSink) Accept(trade orderbook.Trade) {
	s.ch <- trade
}

func (s *ChannelSink) Trades() <-chan orderbook.Trade {
	return s.ch
}

// Close releases consumers ranging over Trades. Only call once the
// engine has stopped.
func (s *ChannelSink) Close() {
	close(s.ch)
}
