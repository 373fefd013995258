package exchange

import (
	"errors"

	riskrule "github.com/campstock/exchange/pkg/exchange/risk_rule"
	"github.com/campstock/exchange/pkg/ledger"
	"github.com/campstock/exchange/pkg/orderbook"
)

var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrOrderNotCancellable   = errors.New("order not cancellable")
	ErrOrderNotFound         = errors.New("order not found")

	// re-exported so callers handle every failure kind from one place
	ErrTradingClosed       = riskrule.ErrTradingClosed
	ErrPriceLimitExceeded  = riskrule.ErrPriceLimitExceeded
	ErrInsufficientBalance = ledger.ErrInsufficientBalance
	ErrBalanceOverflow     = ledger.ErrBalanceOverflow
	ErrUnknownAccount      = ledger.ErrUnknownAccount
	ErrSelfTrade           = orderbook.ErrSelfTrade
)
