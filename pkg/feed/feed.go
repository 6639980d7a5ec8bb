// Package feed publishes executed trades to external market-data
// channels. Publishers implement engine.TradeSink but hand trades to a
// background goroutine immediately: the matching path never waits on a
// broker, and a slow or down broker costs dropped feed messages, never
// matching latency.
package feed

import (
	"time"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

const defaultBuffer = 4096

type stamped struct {
	trade orderbook.Trade
	at    time.Time
}

func report(symbol string, scale model.PriceScale, s stamped) *model.TradeReport {
	return model.NewTradeReport(symbol, scale, s.trade, s.at)
}
