package main

import (
	"encoding/json"
	"flag"

	"go.uber.org/zap"

	"github.com/campstock/exchange/config"
	"github.com/campstock/exchange/pkg/infra"
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

	if err := infra.Migrate("file://migration/sql", cfg.ExchangeDB.MigrationConnURL); err != nil {
		zap.S().Fatalf("migrate fail: %v", err)
	}
	zap.S().Info("migration done")
}
