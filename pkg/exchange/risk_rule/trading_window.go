package riskrule

import (
	"time"

	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	"github.com/campstock/exchange/pkg/exchange/model"
)

// TradingWindowRule rejects placement outside the configured daily
// trading windows. Admin auction/settlement paths do not run rules.
type TradingWindowRule struct{}

func (r *TradingWindowRule) Check(cfg *marketcfg.MarketConfig, _ *model.Order, now time.Time) error {
	if !cfg.IsOpen(now) {
		return ErrTradingClosed
	}
	return nil
}
