package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// TradeReport is the outward-facing form of an execution: decimal
// price, symbol attribution, wall-clock time. Feeds and the
// persistence pipeline publish this, not the tick-priced book trade.
type TradeReport struct {
	Symbol      string          `json:"symbol"`
	BuyOrderID  uint64          `json:"buy_order_id"`
	SellOrderID uint64          `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

func NewTradeReport(symbol string, scale PriceScale, trade orderbook.Trade, ts time.Time) *TradeReport {
	return &TradeReport{
		Symbol:      symbol,
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Price:       scale.FromTicks(trade.Price),
		Quantity:    int64(trade.Qty),
		ExecutedAt:  ts,
	}
}
