package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOrder is the inbound order request. Price and Quantity arrive as
// decimals from the transport layer and are truncated to whole points
// and shares at the engine boundary.
type AddOrder struct {
	AccountID    string
	Symbol       string
	Side         OrderSide
	Kind         OrderKind
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

type CancelOrder struct {
	OrderID string
	Reason  CancelReason
}
