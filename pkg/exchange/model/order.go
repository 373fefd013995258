package model

import (
	"time"
)

type OrderStatus string

const (
	// OrderStatusPending: resting, nothing filled yet.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPartial: resting order partially filled by continuous matching.
	OrderStatusPartial OrderStatus = "partial"
	OrderStatusFilled  OrderStatus = "filled"
	// OrderStatusPendingLimit: limit order that took a partial fill and
	// rested for the remainder (placement or call auction).
	OrderStatusPendingLimit OrderStatus = "pending_limit"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderKind string

const (
	OrderKindLimit  OrderKind = "LIMIT"
	OrderKindMarket OrderKind = "MARKET"
)

type CancelReason string

const (
	CancelReasonUser        CancelReason = "user"
	CancelReasonSettlement  CancelReason = "settlement"
	CancelReasonInsolvency  CancelReason = "insolvency"
	CancelReasonNoLiquidity CancelReason = "insufficient_liquidity"
	CancelReasonSelfTrade   CancelReason = "self_trade"
)

// Order is the full lifetime record of an order. Terminal orders are
// never deleted; they stay in the order store as trade history.
type Order struct {
	OrderID   string    `gorm:"uniqueIndex" json:"order_id"`
	AccountID string    `json:"account_id"`
	Symbol    string    `json:"symbol"`
	Side      OrderSide `json:"side"`
	Kind      OrderKind `json:"kind"`
	// Price in points per share; 0 for market orders.
	Price          int64        `json:"price"`
	Quantity       int64        `json:"quantity"`
	FilledQuantity int64        `json:"filled_quantity"`
	Status         OrderStatus  `json:"status"`
	CancelReason   CancelReason `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCancelled
}

func (o *Order) CanCancel() bool {
	return !o.IsTerminal()
}

// ApplyFill records qty filled. asMaker distinguishes a resting order
// hit by continuous matching (-> partial) from a taker or auction
// order that rests for the remainder (-> pending_limit).
func (o *Order) ApplyFill(qty int64, at time.Time, asMaker bool) {
	if o.IsTerminal() {
		return
	}
	o.FilledQuantity += qty
	if o.FilledQuantity >= o.Quantity {
		o.FilledQuantity = o.Quantity
		o.Status = OrderStatusFilled
	} else if asMaker {
		o.Status = OrderStatusPartial
	} else {
		o.Status = OrderStatusPendingLimit
	}
	o.UpdatedAt = at
}

// Cancel is a no-op on terminal orders; transitions are monotonic.
func (o *Order) Cancel(reason CancelReason, at time.Time) bool {
	if o.IsTerminal() {
		return false
	}
	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = at
	return true
}
