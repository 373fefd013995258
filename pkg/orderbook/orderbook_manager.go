package orderbook

import "sync"

// Manager holds one book per symbol. Matching turns are serialized by
// each book's own lock, so unrelated symbols trade concurrently.
type Manager struct {
	books sync.Map
}

func NewManager() *Manager {
	return &Manager{}
}

// Match runs one continuous matching turn for the incoming order.
func (m *Manager) Match(order *Order, settler Settler) (*MatchOutcome, error) {
	return m.getOrCreateBook(order.Symbol).match(order, settler)
}

// Insert rests a limit order without matching. Auction regime only.
// Rejects an order that would cross the same account's resting order.
func (m *Manager) Insert(order *Order) error {
	return m.getOrCreateBook(order.Symbol).insert(order)
}

// Cancel removes a resting order and returns its book state.
func (m *Manager) Cancel(symbol, orderID string) (*Order, error) {
	return m.getOrCreateBook(symbol).cancel(orderID)
}

func (m *Manager) BestBid(symbol string) (int64, bool) {
	return m.getOrCreateBook(symbol).bestBid()
}

func (m *Manager) BestAsk(symbol string) (int64, bool) {
	return m.getOrCreateBook(symbol).bestAsk()
}

// Snapshot copies both sides of a book in price-time priority order.
func (m *Manager) Snapshot(symbol string) (bids, asks []*Order) {
	book := m.getOrCreateBook(symbol)
	book.mu.Lock()
	defer book.mu.Unlock()
	return book.snapshotLocked()
}

// Txn is an exclusive view of one book. The call auction and forced
// settlement hold it for their whole sweep so no matching turn can
// interleave.
type Txn struct {
	book *orderBook
}

func (tx *Txn) Snapshot() (bids, asks []*Order) {
	return tx.book.snapshotLocked()
}

func (tx *Txn) ApplyFill(orderID string, qty int64) error {
	return tx.book.applyFillLocked(orderID, qty)
}

func (tx *Txn) Remove(orderID string) (*Order, error) {
	return tx.book.removeLocked(orderID)
}

func (tx *Txn) RemoveAll() []*Order {
	return tx.book.removeAllLocked()
}

// Exclusive runs fn while holding the symbol's book lock.
func (m *Manager) Exclusive(symbol string, fn func(tx *Txn) error) error {
	book := m.getOrCreateBook(symbol)
	book.mu.Lock()
	defer book.mu.Unlock()
	return fn(&Txn{book: book})
}

// Symbols lists every symbol with a book, resting orders or not.
func (m *Manager) Symbols() []string {
	var symbols []string
	m.books.Range(func(k, _ any) bool {
		symbols = append(symbols, k.(string))
		return true
	})
	return symbols
}

func (m *Manager) getOrCreateBook(symbol string) *orderBook {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*orderBook)
	}
	actual, _ := m.books.LoadOrStore(symbol, newOrderBook(symbol))
	return actual.(*orderBook)
}
