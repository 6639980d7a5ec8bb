package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// NatsFeed publishes trade reports to a JetStream subject. The
// persistence worker (pkg/store.Worker) consumes the same subject with
// a durable consumer.
type NatsFeed struct {
	js      nats.JetStreamContext
	subject string
	symbol  string
	scale   model.PriceScale
	log     *logging.Logger

	ch chan stamped
	wg sync.WaitGroup
}

type NatsFeedConfig struct {
	Subject string
	Symbol  string
	Scale   model.PriceScale
	Buffer  int
	Logger  *logging.Logger
}

func NewNatsFeed(js nats.JetStreamContext, cfg *NatsFeedConfig) *NatsFeed {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &NatsFeed{
		js:      js,
		subject: cfg.Subject,
		symbol:  cfg.Symbol,
		scale:   cfg.Scale,
		log:     log,
		ch:      make(chan stamped, cfg.Buffer),
	}
}

func (f *NatsFeed) Start(ctx context.Context) {
	f.wg.Add(1)
	go f.run(ctx)
}

// Accept enqueues the trade for publication, dropping when the buffer
// is full.
func (f *NatsFeed) Accept(trade orderbook.Trade) {
	select {
	case f.ch <- stamped{trade: trade, at: time.Now()}:
	default:
		f.log.Warn(context.Background(), "nats feed buffer full, trade dropped",
			zap.Uint64("buy_order_id", trade.BuyOrderID),
			zap.Uint64("sell_order_id", trade.SellOrderID))
	}
}

func (f *NatsFeed) Stop() {
	close(f.ch)
	f.wg.Wait()
}

func (f *NatsFeed) run(ctx context.Context) {
	defer f.wg.Done()

	for s := range f.ch {
		b, err := json.Marshal(report(f.symbol, f.scale, s))
		if err != nil {
			f.log.Error(ctx, "marshal trade report fail", zap.Error(err))
			continue
		}
		if _, err := f.js.PublishAsync(f.subject, b); err != nil {
			f.log.Error(ctx, "publish trade report fail", zap.Error(err))
		}
	}
}
