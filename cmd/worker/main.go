package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	"github.com/joripage/matching-engine/pkg/store"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx := context.Background()

	natsURL := nats.DefaultURL
	stream, subject, durable := "TRADES", "TRADES.executed", "trade_worker"
	if cfg.Nats != nil {
		if cfg.Nats.URL != "" {
			natsURL = cfg.Nats.URL
		}
		if cfg.Nats.Stream != "" {
			stream = cfg.Nats.Stream
		}
		if cfg.Nats.Subject != "" {
			subject = cfg.Nats.Subject
		}
		if cfg.Nats.Durable != "" {
			durable = cfg.Nats.Durable
		}
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		zap.S().Errorf("connect nats fail with err: %v", err)
		panic(err)
	}
	js, err := nc.JetStream()
	if err != nil {
		panic(err)
	}

	// Ensure stream
	_, _ = js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{stream + ".*"},
	})

	db, err := postgres_wrapper.InitPostgres(cfg.TradeDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := store.NewRepo(db)

	w := store.NewWorker(sqlRepo)
	go w.StartConsumer(ctx, js, subject, durable)

	select {}
}
