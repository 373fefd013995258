package eventstore

import (
	"sync"

	"github.com/campstock/exchange/pkg/exchange/model"
)

type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]*model.OrderEvent
	fills  map[string][]*model.TradeFill
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events: make(map[string][]*model.OrderEvent),
		fills:  make(map[string][]*model.TradeFill),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
}

func (s *InMemoryEventStore) AddFill(fill *model.TradeFill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills[fill.Symbol] = append(s.fills[fill.Symbol], fill)
}

func (s *InMemoryEventStore) OrderEvents(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.OrderEvent(nil), s.events[orderID]...)
}

// Fills returns the most recent fills for a symbol, newest last.
func (s *InMemoryEventStore) Fills(symbol string, limit int) []*model.TradeFill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.fills[symbol]
	if limit <= 0 || limit >= len(all) {
		return append([]*model.TradeFill(nil), all...)
	}
	return append([]*model.TradeFill(nil), all[len(all)-limit:]...)
}
