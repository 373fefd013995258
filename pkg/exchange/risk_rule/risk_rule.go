package riskrule

import (
	"errors"
	"time"

	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	"github.com/campstock/exchange/pkg/exchange/model"
)

var (
	ErrTradingClosed      = errors.New("trading window closed")
	ErrPriceLimitExceeded = errors.New("price outside allowed band")
)

// RiskRule rejects an order before it touches the book. The market
// config is loaded once per operation and passed in, so rules stay
// pure given their inputs.
type RiskRule interface {
	Check(cfg *marketcfg.MarketConfig, order *model.Order, now time.Time) error
}
