package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/campstock/exchange/config"
	"github.com/campstock/exchange/pkg/exchange/events"
	"github.com/campstock/exchange/pkg/exchange/repo"
	"github.com/campstock/exchange/pkg/exchange/worker"
	postgres_wrapper "github.com/campstock/exchange/pkg/infra/postgres"
	"github.com/campstock/exchange/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.Init(logging.INFO, cfg.ServiceName+"-worker")
	defer logger.Sync() // nolint

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx := context.Background()

	natsURL := nats.DefaultURL
	streamName := "EXCHANGE"
	if cfg.Nats != nil {
		natsURL = cfg.Nats.URL
		streamName = cfg.Nats.StreamName
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		zap.S().Fatalf("connect nats fail: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		zap.S().Fatalf("init jetstream fail: %v", err)
	}
	if err := events.EnsureStream(js, streamName); err != nil {
		zap.S().Warnf("ensure stream fail: %v", err)
	}

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.ExchangeDB)
	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)
	go func() {
		if err := w.StartOrderConsumer(ctx, js, "order_event_worker"); err != nil {
			zap.S().Errorf("order consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := w.StartFillConsumer(ctx, js, "trade_fill_worker"); err != nil {
			zap.S().Errorf("fill consumer stopped: %v", err)
		}
	}()

	select {}
}
