package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/feed"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	"github.com/joripage/matching-engine/pkg/kafkawrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/store"
)

// exchange runs the matching engine with every configured downstream
// attached: trade log, redis/kafka/nats market-data feeds, postgres
// persistence. Sections absent from the config are simply not wired.
func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logging.NewLogger(logging.INFO)
	symbol := cfg.Instrument.Symbol
	scale := cfg.Instrument.PriceScale

	tradeLog := engine.NewTradeLog()
	fanout := engine.NewFanoutSink(tradeLog)

	var stops []func()

	if cfg.Redis != nil && cfg.RedisFeed != nil {
		client, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			panic(err)
		}
		rf := feed.NewRedisFeed(client, &feed.RedisFeedConfig{
			Channel: cfg.RedisFeed.Channel,
			Symbol:  symbol,
			Scale:   scale,
			Buffer:  cfg.RedisFeed.Buffer,
			Logger:  log,
		})
		rf.Start(ctx)
		fanout.Register(rf)
		stops = append(stops, rf.Stop)
	}

	if cfg.KafkaFeed != nil {
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.KafkaFeed.Brokers,
		})
		kf := feed.NewKafkaFeed(producer, &feed.KafkaFeedConfig{
			Topic:  cfg.KafkaFeed.Topic,
			Symbol: symbol,
			Scale:  scale,
			Buffer: cfg.KafkaFeed.Buffer,
			Logger: log,
		})
		kf.Start(ctx)
		fanout.Register(kf)
		stops = append(stops, kf.Stop)
		stops = append(stops, func() { producer.Close(ctx) })
	}

	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			panic(err)
		}
		js, err := nc.JetStream(nats.PublishAsyncMaxPending(65536))
		if err != nil {
			panic(err)
		}
		_, _ = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Nats.Stream,
			Subjects: []string{cfg.Nats.Stream + ".*"},
		})
		nf := feed.NewNatsFeed(js, &feed.NatsFeedConfig{
			Subject: cfg.Nats.Subject,
			Symbol:  symbol,
			Scale:   scale,
			Buffer:  cfg.Nats.Buffer,
			Logger:  log,
		})
		nf.Start(ctx)
		fanout.Register(nf)
		stops = append(stops, nf.Stop)
		stops = append(stops, nc.Close)
	}

	if cfg.TradeDB != nil {
		db, err := postgres_wrapper.InitPostgresWithBackoff(cfg.TradeDB)
		if err != nil {
			panic(err)
		}
		sink := store.NewPersistingSink(store.NewRepo(db).Trade(), &store.PersistingSinkConfig{
			Symbol: symbol,
			Scale:  scale,
			Logger: log,
		})
		sink.Start()
		fanout.Register(sink)
		stops = append(stops, sink.Stop)
	}

	e := engine.New(&engine.Config{
		Sink:   fanout,
		Logger: log,
	})
	e.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	fmt.Printf("Exchange started on %s. Press Ctrl+C to exit.\n", symbol)

	<-sigs
	fmt.Println("Shutting down...")

	e.Stop()
	for i := len(stops) - 1; i >= 0; i-- {
		stops[i]()
	}
	cancel()

	fmt.Printf("Total trades: %d\n", tradeLog.Len())
	fmt.Println("Exited cleanly.")
}
