package model

import (
	"fmt"
	"time"
)

type OrderEvent struct {
	EventID        string       `gorm:"uniqueIndex" json:"event_id"`
	OrderID        string       `json:"order_id"`
	AccountID      string       `json:"account_id"`
	Symbol         string       `json:"symbol"`
	Side           OrderSide    `json:"side"`
	Status         OrderStatus  `json:"status"`
	Price          int64        `json:"price"`
	Quantity       int64        `json:"quantity"`
	FilledQuantity int64        `json:"filled_quantity"`
	CancelReason   CancelReason `json:"cancel_reason,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

func NewOrderEvent(o Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:        NewEventID(o.OrderID, o.Status, ts),
		OrderID:        o.OrderID,
		AccountID:      o.AccountID,
		Symbol:         o.Symbol,
		Side:           o.Side,
		Status:         o.Status,
		Price:          o.Price,
		Quantity:       o.Quantity,
		FilledQuantity: o.FilledQuantity,
		CancelReason:   o.CancelReason,
		Timestamp:      ts,
	}
}

func NewEventID(orderID string, status OrderStatus, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%d", orderID, status, ts.UnixNano())
}
