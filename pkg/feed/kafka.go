package feed

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/kafkawrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// KafkaFeed publishes trade reports to a kafka topic, keyed by the buy
// order id so all fills of one buy order stay on one partition; fills of
// one sell order may land on different partitions.
type KafkaFeed struct {
	producer *kafkawrapper.Producer
	topic    string
	symbol   string
	scale    model.PriceScale
	log      *logging.Logger

	ch chan stamped
	wg sync.WaitGroup
}

type KafkaFeedConfig struct {
	Topic  string
	Symbol string
	Scale  model.PriceScale
	Buffer int
	Logger *logging.Logger
}

func NewKafkaFeed(producer *kafkawrapper.Producer, cfg *KafkaFeedConfig) *KafkaFeed {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &KafkaFeed{
		producer: producer,
		topic:    cfg.Topic,
		symbol:   cfg.Symbol,
		scale:    cfg.Scale,
		log:      log,
		ch:       make(chan stamped, cfg.Buffer),
	}
}

func (f *KafkaFeed) Start(ctx context.Context) {
	f.wg.Add(1)
	go f.run(ctx)
}

// Accept enqueues the trade for publication, dropping when the buffer
// is full.
func (f *KafkaFeed) Accept(trade orderbook.Trade) {
	select {
	case f.ch <- stamped{trade: trade, at: time.Now()}:
	default:
		f.log.Warn(context.Background(), "kafka feed buffer full, trade dropped",
			zap.Uint64("buy_order_id", trade.BuyOrderID),
			zap.Uint64("sell_order_id", trade.SellOrderID))
	}
}

func (f *KafkaFeed) Stop() {
	close(f.ch)
	f.wg.Wait()
}

func (f *KafkaFeed) run(ctx context.Context) {
	defer f.wg.Done()

	for s := range f.ch {
		key := strconv.FormatUint(s.trade.BuyOrderID, 10)
		if err := f.producer.PublishJSON(ctx, f.topic, key, report(f.symbol, f.scale, s), nil); err != nil {
			f.log.Error(ctx, "publish trade report fail", zap.Error(err))
		}
	}
}
