package exchange

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campstock/exchange/pkg/exchange/model"
	"github.com/campstock/exchange/pkg/orderbook"
)

// ForceSettlement converts every account's outstanding shares into
// points at the given price and cancels all resting orders fleet-wide,
// since the traded instrument ceases to exist. Exclusive: no order
// placement, cancellation or auction runs while it sweeps. Running it
// again with nothing outstanding is a no-op.
func (ex *Exchange) ForceSettlement(_ context.Context, price int64) (*model.SettlementResult, error) {
	if price <= 0 {
		return nil, ErrInvalidParameters
	}

	ex.settleMu.Lock()
	defer ex.settleMu.Unlock()

	now := ex.nowFn()
	result := &model.SettlementResult{
		SettlementID:    "STL-" + uuid.NewString(),
		SettlementPrice: price,
		ExecutedAt:      now,
	}

	// clear the books first so no order survives into a market whose
	// instrument is gone
	for _, symbol := range ex.books.Symbols() {
		_ = ex.books.Exclusive(symbol, func(tx *orderbook.Txn) error {
			for _, bo := range tx.RemoveAll() {
				if o := ex.getOrder(bo.ID); o != nil && o.Cancel(model.CancelReasonSettlement, now) {
					result.OrdersCancelled++
					ex.emitOrderEvent(o)
				}
			}
			return nil
		})
	}

	for _, accountID := range ex.ledger.AccountIDs() {
		converted, err := ex.ledger.ConvertShares(accountID, price)
		if err != nil {
			zap.S().Warnw("settlement conversion skipped", "account_id", accountID, "error", err)
			continue
		}
		if converted == 0 {
			continue
		}
		credited := converted * price
		result.Conversions = append(result.Conversions, model.AccountConversion{
			AccountID:       accountID,
			SharesConverted: converted,
			PointsCredited:  credited,
		})
		result.AccountsSettled++
		result.SharesConverted += converted
		result.PointsCredited += credited
	}

	// the pool's unissued supply ends with the instrument
	zero := int64(0)
	_ = ex.ipo.Update(&zero, nil)

	zap.S().Infow("forced settlement executed",
		"settlement_id", result.SettlementID,
		"price", price,
		"accounts_settled", result.AccountsSettled,
		"shares_converted", result.SharesConverted,
		"orders_cancelled", result.OrdersCancelled,
	)
	return result, nil
}
