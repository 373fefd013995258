package riskrule

import (
	"time"

	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	"github.com/campstock/exchange/pkg/exchange/model"
)

// PriceBandRule rejects limit prices outside the day's allowed band
// around the reference price. Market orders carry no price and pass.
type PriceBandRule struct{}

func (r *PriceBandRule) Check(cfg *marketcfg.MarketConfig, order *model.Order, _ time.Time) error {
	if order.Kind != model.OrderKindLimit {
		return nil
	}
	if !cfg.WithinBand(order.Price) {
		return ErrPriceLimitExceeded
	}
	return nil
}
