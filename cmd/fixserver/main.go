package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine"
	fixgateway "github.com/joripage/matching-engine/pkg/gateway/fix"
	"github.com/joripage/matching-engine/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	log := logging.NewLogger(logging.INFO)

	fixConfigPath := "./config/fixserver.cfg"
	if cfg.Fix != nil && cfg.Fix.ConfigFilepath != "" {
		fixConfigPath = cfg.Fix.ConfigFilepath
	}

	gateway := fixgateway.NewGateway(&fixgateway.GatewayConfig{
		ConfigFilepath: fixConfigPath,
		Symbol:         cfg.Instrument.Symbol,
		Scale:          cfg.Instrument.PriceScale,
		Logger:         log,
	})

	e := engine.New(&engine.Config{
		Sink:   gateway,
		Logger: log,
	})
	gateway.Bind(e)

	e.Start()
	if err := gateway.Start(ctx); err != nil {
		panic(err)
	}
	fmt.Println("FIX server started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	gateway.Stop()
	e.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}
