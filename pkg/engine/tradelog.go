package engine

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// TradeLog is an in-memory trade sink keeping every execution in
// production order, with a per-order index for audit lookups. Safe for
// concurrent readers while the engine appends.
type TradeLog struct {
	mu      sync.RWMutex
	trades  []orderbook.Trade
	byOrder map[uint64][]int
}

func NewTradeLog() *TradeLog {
	return &TradeLog{
		byOrder: make(map[uint64][]int),
	}
}

func (l *TradeLog) Accept(trade orderbook.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := len(l.trades)
	l.trades = append(l.trades, trade)
	l.byOrder[trade.BuyOrderID] = append(l.byOrder[trade.BuyOrderID], idx)
	l.byOrder[trade.SellOrderID] = append(l.byOrder[trade.SellOrderID], idx)
}

// Trades returns a snapshot of every recorded trade.
func (l *TradeLog) Trades() []orderbook.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]orderbook.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// TradesForOrder returns the executions a given order participated in.
func (l *TradeLog) TradesForOrder(orderID uint64) []orderbook.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idxs := l.byOrder[orderID]
	out := make([]orderbook.Trade, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, l.trades[i])
	}
	return out
}

func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}
