package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// RedisFeed publishes trade reports to a redis pub/sub channel.
type RedisFeed struct {
	client  *redis.Client
	channel string
	symbol  string
	scale   model.PriceScale
	log     *logging.Logger

	ch chan stamped
	wg sync.WaitGroup
}

type RedisFeedConfig struct {
	Channel string
	Symbol  string
	Scale   model.PriceScale
	Buffer  int
	Logger  *logging.Logger
}

func NewRedisFeed(client *redis.Client, cfg *RedisFeedConfig) *RedisFeed {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &RedisFeed{
		client:  client,
		channel: cfg.Channel,
		symbol:  cfg.Symbol,
		scale:   cfg.Scale,
		log:     log,
		ch:      make(chan stamped, cfg.Buffer),
	}
}

func (f *RedisFeed) Start(ctx context.Context) {
	f.wg.Add(1)
	go f.run(ctx)
}

// Accept enqueues the trade for publication. Drops when the buffer is
// full rather than stalling the engine loop.
func (f *RedisFeed) Accept(trade orderbook.Trade) {
	select {
	case f.ch <- stamped{trade: trade, at: time.Now()}:
	default:
		f.log.Warn(context.Background(), "redis feed buffer full, trade dropped",
			zap.Uint64("buy_order_id", trade.BuyOrderID),
			zap.Uint64("sell_order_id", trade.SellOrderID))
	}
}

func (f *RedisFeed) Stop() {
	close(f.ch)
	f.wg.Wait()
}

func (f *RedisFeed) run(ctx context.Context) {
	defer f.wg.Done()

	for s := range f.ch {
		b, err := json.Marshal(report(f.symbol, f.scale, s))
		if err != nil {
			f.log.Error(ctx, "marshal trade report fail", zap.Error(err))
			continue
		}
		if err := f.client.Publish(ctx, f.channel, b).Err(); err != nil {
			f.log.Error(ctx, "publish trade report fail", zap.Error(err))
		}
	}
}
