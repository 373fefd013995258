package exchange

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campstock/exchange/pkg/exchange/model"
	"github.com/campstock/exchange/pkg/orderbook"
)

// RunCallAuction computes the single clearing price maximizing matched
// volume over the resting book plus the IPO pool, then executes every
// crossing order at that price. The book stays locked for the whole
// sweep; no continuous matching can interleave. Admin-triggered, so
// trading windows are not checked.
func (ex *Exchange) RunCallAuction(ctx context.Context, symbol string) (*model.AuctionResult, error) {
	ex.settleMu.RLock()
	defer ex.settleMu.RUnlock()

	now := ex.nowFn()
	result := &model.AuctionResult{Symbol: symbol, ExecutedAt: now}

	err := ex.books.Exclusive(symbol, func(tx *orderbook.Txn) error {
		bids, asks := tx.Snapshot()
		pool := ex.ipo.Status()

		clearing, volume := computeClearingPrice(bids, asks, pool, ex.lastTradePrice(ctx, symbol))
		if volume == 0 {
			result.Stats = ex.bookStats(tx)
			return nil
		}

		ex.executeAuction(ctx, tx, bids, asks, pool, clearing, result, now)
		result.Stats = ex.bookStats(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Matched {
		zap.S().Infow("call auction executed",
			"symbol", symbol,
			"clearing_price", result.ClearingPrice,
			"matched_volume", result.MatchedVolume,
			"fills", len(result.Fills),
		)
	}
	return result, nil
}

// computeClearingPrice evaluates every candidate price (distinct limit
// prices, plus the issue price while pool supply remains) and picks
// the one maximizing min(cumulative demand, cumulative supply). Ties
// break toward the last traded price; with no prior trade, toward the
// lowest price.
func computeClearingPrice(bids, asks []*orderbook.Order, pool model.IPOStatus, lastPrice int64) (price, volume int64) {
	seen := map[int64]bool{}
	var candidates []int64
	add := func(p int64) {
		if p > 0 && !seen[p] {
			seen[p] = true
			candidates = append(candidates, p)
		}
	}
	for _, b := range bids {
		add(b.Price)
	}
	for _, a := range asks {
		add(a.Price)
	}
	if pool.SharesRemaining > 0 {
		add(pool.IssuePrice)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	abs := func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	}

	var bestPrice, bestVolume int64
	for _, p := range candidates {
		var demand, supply int64
		for _, b := range bids {
			if b.Price >= p {
				demand += b.Qty
			}
		}
		for _, a := range asks {
			if a.Price <= p {
				supply += a.Qty
			}
		}
		if pool.SharesRemaining > 0 && pool.IssuePrice <= p {
			supply += pool.SharesRemaining
		}

		vol := min(demand, supply)
		switch {
		case vol > bestVolume:
			bestPrice, bestVolume = p, vol
		case vol == bestVolume && vol > 0 && lastPrice > 0 &&
			abs(p-lastPrice) < abs(bestPrice-lastPrice):
			bestPrice = p
		}
	}
	return bestPrice, bestVolume
}

// supplyEntry is one source of shares at or below the clearing price:
// a resting ask or the IPO pool.
type supplyEntry struct {
	order  *orderbook.Order // nil for the pool
	qty    int64
	isPool bool
}

// executeAuction fills crossing orders pairwise at the clearing price.
// Both sides are walked in price-time priority, so the marginal tier
// allocates by arrival time. An order whose owner can no longer pay or
// deliver is cancelled and skipped; executed volume is what actually
// settled.
func (ex *Exchange) executeAuction(ctx context.Context, tx *orderbook.Txn, bids, asks []*orderbook.Order, pool model.IPOStatus, clearing int64, result *model.AuctionResult, now time.Time) {
	var demand []*orderbook.Order
	for _, b := range bids {
		if b.Price >= clearing {
			demand = append(demand, b)
		}
	}

	var supply []supplyEntry
	poolPlaced := pool.SharesRemaining == 0 || pool.IssuePrice > clearing
	for _, a := range asks {
		if a.Price > clearing {
			continue
		}
		if !poolPlaced && pool.IssuePrice <= a.Price {
			supply = append(supply, supplyEntry{qty: pool.SharesRemaining, isPool: true})
			poolPlaced = true
		}
		supply = append(supply, supplyEntry{order: a, qty: a.Qty})
	}
	if !poolPlaced {
		supply = append(supply, supplyEntry{qty: pool.SharesRemaining, isPool: true})
	}

	di, si := 0, 0
	for di < len(demand) && si < len(supply) {
		bid := demand[di]
		ask := &supply[si]
		if bid.Qty == 0 {
			di++
			continue
		}
		if ask.qty == 0 {
			si++
			continue
		}

		qty := min(bid.Qty, ask.qty)

		if ask.isPool {
			taken, _ := ex.ipo.Take(qty)
			if taken == 0 {
				// pool drained concurrently by another symbol's buys
				ask.qty = 0
				continue
			}
			if err := ex.ledger.ApplyDelta(bid.AccountID, -clearing*taken, taken); err != nil {
				ex.ipo.Restore(taken)
				ex.dropAuctionOrder(tx, bid.ID)
				di++
				continue
			}
			qty = taken
			ask.qty -= taken
		} else {
			if err := ex.ledger.Transfer(bid.AccountID, ask.order.AccountID, clearing*qty, qty); err != nil {
				if ex.accountShort(ask.order.AccountID, 0, qty) {
					ex.dropAuctionOrder(tx, ask.order.ID)
					si++
				} else {
					ex.dropAuctionOrder(tx, bid.ID)
					di++
				}
				continue
			}
			ask.qty -= qty
			_ = tx.ApplyFill(ask.order.ID, qty)
			ex.applyAuctionFill(ask.order.ID, qty, now)
		}

		bid.Qty -= qty
		_ = tx.ApplyFill(bid.ID, qty)
		ex.applyAuctionFill(bid.ID, qty, now)

		fill := &model.TradeFill{
			FillID:       uuid.NewString(),
			Symbol:       result.Symbol,
			BuyOrderID:   bid.ID,
			BuyAccountID: bid.AccountID,
			Price:        clearing,
			Qty:          qty,
			CreatedAt:    now,
		}
		if !ask.isPool {
			fill.SellOrderID = ask.order.ID
			fill.SellAccountID = ask.order.AccountID
		}
		ex.recordFill(ctx, fill)
		result.Fills = append(result.Fills, fill)
		result.MatchedVolume += qty
	}

	if result.MatchedVolume > 0 {
		result.Matched = true
		result.ClearingPrice = clearing
	}
}

// accountShort reports whether the account cannot cover points and
// shares at current balances.
func (ex *Exchange) accountShort(accountID string, points, shares int64) bool {
	bal, err := ex.ledger.GetBalance(accountID)
	if err != nil {
		return true
	}
	return bal.Points < points || bal.Shares < shares
}

func (ex *Exchange) dropAuctionOrder(tx *orderbook.Txn, orderID string) {
	_, _ = tx.Remove(orderID)
	ex.cancelOrderRecord(orderID, model.CancelReasonInsolvency)
}

// applyAuctionFill updates the order record for an auction fill. A
// partially filled order stays resting as pending_limit.
func (ex *Exchange) applyAuctionFill(orderID string, qty int64, now time.Time) {
	if o := ex.getOrder(orderID); o != nil {
		o.ApplyFill(qty, now, false)
		ex.emitOrderEvent(o)
	}
}

// bookStats counts what is left resting by order status and side.
func (ex *Exchange) bookStats(tx *orderbook.Txn) model.OrderStats {
	bids, asks := tx.Snapshot()
	var stats model.OrderStats
	count := func(orders []*orderbook.Order, pending, partial, pendingLimit *int) {
		for _, bo := range orders {
			o := ex.getOrder(bo.ID)
			switch {
			case o != nil && o.Status == model.OrderStatusPending:
				*pending++
			case o != nil && o.Status == model.OrderStatusPartial:
				*partial++
			default:
				*pendingLimit++
			}
		}
	}
	count(bids, &stats.PendingBuy, &stats.PartialBuy, &stats.PendingLimitBuy)
	count(asks, &stats.PendingSell, &stats.PartialSell, &stats.PendingLimitSell)
	return stats
}
