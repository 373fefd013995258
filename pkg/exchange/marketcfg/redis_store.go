package marketcfg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	configKey       = "exchange:market_config"
	lastPriceKeyFmt = "exchange:last_price:%s"
)

// RedisStore keeps the market config and last trade prices in redis so
// every instance and the admin console read the same policy.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context) (*MarketConfig, error) {
	data, err := s.rdb.Get(ctx, configKey).Bytes()
	if err == redis.Nil {
		return &MarketConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &MarketConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *RedisStore) Set(ctx context.Context, cfg *MarketConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, configKey, data, 0).Err()
}

func (s *RedisStore) LastTradePrice(ctx context.Context, symbol string) (int64, error) {
	price, err := s.rdb.Get(ctx, fmt.Sprintf(lastPriceKeyFmt, symbol)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return price, err
}

func (s *RedisStore) SetLastTradePrice(ctx context.Context, symbol string, price int64) error {
	return s.rdb.Set(ctx, fmt.Sprintf(lastPriceKeyFmt, symbol), price, 0).Err()
}
