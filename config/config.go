package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/campstock/exchange/pkg/infra/postgres"
	redis_wrapper "github.com/campstock/exchange/pkg/infra/redis"
)

type NatsConfig struct {
	URL        string `yaml:"url"`
	StreamName string `yaml:"stream_name"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	ExchangeDB  *postgres_wrapper.PostgresConfig `yaml:"exchange_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats        *NatsConfig                      `yaml:"nats"`
	HTTP        *HTTPConfig                      `yaml:"http"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
