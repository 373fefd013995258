package model

import "time"

// PlaceResult is returned by order placement: the order record plus
// any fills executed immediately.
type PlaceResult struct {
	Order *Order       `json:"order"`
	Fills []*TradeFill `json:"fills"`
}

// OrderStats counts the resting orders left on the book by status and
// side: fresh orders, maker remainders hit during continuous trading,
// and taker or auction remainders.
type OrderStats struct {
	PendingBuy       int `json:"pending_buy"`
	PendingSell      int `json:"pending_sell"`
	PartialBuy       int `json:"partial_buy"`
	PartialSell      int `json:"partial_sell"`
	PendingLimitBuy  int `json:"pending_limit_buy"`
	PendingLimitSell int `json:"pending_limit_sell"`
}

// AuctionResult reports one call auction run. Matched is false when no
// price crosses any volume; everything stays resting in that case.
type AuctionResult struct {
	Symbol        string       `json:"symbol"`
	Matched       bool         `json:"matched"`
	ClearingPrice int64        `json:"clearing_price"`
	MatchedVolume int64        `json:"matched_volume"`
	Fills         []*TradeFill `json:"fills"`
	Stats         OrderStats   `json:"order_stats"`
	ExecutedAt    time.Time    `json:"executed_at"`
}

type IPOStatus struct {
	InitialShares   int64 `json:"initial_shares"`
	SharesRemaining int64 `json:"shares_remaining"`
	IssuePrice      int64 `json:"issue_price"`
}

// AccountConversion is one account's share-to-point conversion during
// forced settlement.
type AccountConversion struct {
	AccountID       string `json:"account_id"`
	SharesConverted int64  `json:"shares_converted"`
	PointsCredited  int64  `json:"points_credited"`
}

type SettlementResult struct {
	SettlementID    string              `json:"settlement_id"`
	SettlementPrice int64               `json:"settlement_price"`
	AccountsSettled int                 `json:"accounts_settled"`
	SharesConverted int64               `json:"shares_converted"`
	PointsCredited  int64               `json:"points_credited"`
	OrdersCancelled int                 `json:"orders_cancelled"`
	Conversions     []AccountConversion `json:"conversions"`
	ExecutedAt      time.Time           `json:"executed_at"`
}

// BookSnapshot lists the resting orders of one symbol, best price
// first, time priority within a level.
type BookSnapshot struct {
	Symbol string   `json:"symbol"`
	Bids   []*Order `json:"bids"`
	Asks   []*Order `json:"asks"`
}
