package orderbook

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found in book")
	ErrSelfTrade     = errors.New("order would trade against same account")
)
