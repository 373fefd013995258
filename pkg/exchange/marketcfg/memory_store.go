package marketcfg

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used in tests and single-node
// deployments without redis.
type MemoryStore struct {
	mu         sync.RWMutex
	cfg        MarketConfig
	lastPrices map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lastPrices: make(map[string]int64)}
}

func (s *MemoryStore) Get(_ context.Context) (*MarketConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.Windows = append([]Window(nil), s.cfg.Windows...)
	return &cfg, nil
}

func (s *MemoryStore) Set(_ context.Context, cfg *MarketConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
	return nil
}

func (s *MemoryStore) LastTradePrice(_ context.Context, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrices[symbol], nil
}

func (s *MemoryStore) SetLastTradePrice(_ context.Context, symbol string, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPrices[symbol] = price
	return nil
}
