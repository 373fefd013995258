package orderbook

import "time"

// Fill is one match between a buy and a sell order. Price is the
// resting order's price during continuous trading, or the clearing
// price during a call auction.
type Fill struct {
	BuyOrderID  string
	SellOrderID string
	Price       int64
	Qty         int64
	At          time.Time
}

// SettleOutcome tells the matching loop what to do after a settlement
// attempt for one prospective fill.
type SettleOutcome int

const (
	// SettleOK: balances moved, record the fill.
	SettleOK SettleOutcome = iota
	// SettleSkipMaker: the resting order's owner cannot pay or deliver;
	// drop the resting order and keep matching.
	SettleSkipMaker
	// SettleAbort: the incoming order's owner cannot pay; stop the
	// matching turn. Fills already made stand.
	SettleAbort
)

// Settler moves points and shares between the two sides of a fill.
// The book never touches balances itself.
type Settler interface {
	Settle(taker, maker *Order, price, qty int64) SettleOutcome
}
