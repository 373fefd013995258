package orderbook

import "time"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

type OrderKind string

const (
	LIMIT  OrderKind = "LIMIT"
	MARKET OrderKind = "MARKET"
)

// Order is the book-resident view of an order: only the fields the
// matching loop needs. Qty is the remaining (unfilled) quantity; the
// full order record lives in the exchange layer.
type Order struct {
	ID        string
	AccountID string
	Symbol    string
	Side      Side
	Kind      OrderKind
	Price     int64 // points per share; 0 for market orders
	Qty       int64
	Time      time.Time
}
