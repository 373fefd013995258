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
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/campstock/exchange/config"
	"github.com/campstock/exchange/pkg/api"
	"github.com/campstock/exchange/pkg/exchange"
	"github.com/campstock/exchange/pkg/exchange/events"
	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	redis_wrapper "github.com/campstock/exchange/pkg/infra/redis"
	"github.com/campstock/exchange/pkg/logging"
)

func main() {
	go func() {
		_ = http.ListenAndServe("localhost:6060", nil)
	}()

	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.Init(logging.INFO, cfg.ServiceName)
	defer logger.Sync() // nolint

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// market config store: redis when configured, in-memory otherwise
	var cfgStore marketcfg.Store = marketcfg.NewMemoryStore()
	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis fail: %v", err)
		}
		cfgStore = marketcfg.NewRedisStore(rdb)
	}

	opts := []exchange.Option{}
	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Fatalf("connect nats fail: %v", err)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			zap.S().Fatalf("init jetstream fail: %v", err)
		}
		if err := events.EnsureStream(js, cfg.Nats.StreamName); err != nil {
			zap.S().Warnf("ensure stream fail: %v", err)
		}
		opts = append(opts, exchange.WithPublisher(events.NewPublisher(js)))
	}

	engine := exchange.New(cfgStore, opts...)

	addr := ":8080"
	if cfg.HTTP != nil && cfg.HTTP.Addr != "" {
		addr = cfg.HTTP.Addr
	}
	server := api.NewServer(engine)
	go func() {
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("http server fail: %v", err)
		}
	}()

	fmt.Println("Exchange started. Press Ctrl+C to exit.")
	<-sigs
	fmt.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Warnf("http shutdown fail: %v", err)
	}
	cancel()

	fmt.Println("Exited cleanly.")
}
