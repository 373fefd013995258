package model

import "time"

// TradeFill is the immutable record of one match.
type TradeFill struct {
	FillID     string `gorm:"uniqueIndex" json:"fill_id"`
	Symbol     string `json:"symbol"`
	BuyOrderID string `json:"buy_order_id"`
	// SellOrderID and SellAccountID are empty when the sell side is the
	// IPO pool.
	SellOrderID   string    `json:"sell_order_id,omitempty"`
	BuyAccountID  string    `json:"buy_account_id"`
	SellAccountID string    `json:"sell_account_id,omitempty"`
	Price         int64     `json:"price"`
	Qty           int64     `json:"qty"`
	CreatedAt     time.Time `json:"created_at"`
}
