package exchange

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	eventstore "github.com/campstock/exchange/pkg/exchange/event_store"
	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	"github.com/campstock/exchange/pkg/exchange/model"
	riskrule "github.com/campstock/exchange/pkg/exchange/risk_rule"
	"github.com/campstock/exchange/pkg/ledger"
	"github.com/campstock/exchange/pkg/orderbook"
)

// EventPublisher pushes order events and fills to the messaging layer.
type EventPublisher interface {
	PublishOrderEvent(ev *model.OrderEvent)
	PublishFill(fill *model.TradeFill)
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(*model.OrderEvent) {}
func (noopPublisher) PublishFill(*model.TradeFill)        {}

// Exchange is the trading core: ledger, per-symbol books, IPO pool and
// the continuous/auction matching on top of them. One matching turn
// runs at a time per symbol; forced settlement excludes everything.
type Exchange struct {
	ledger    *ledger.Ledger
	books     *orderbook.Manager
	ipo       *IPOPool
	cfgStore  marketcfg.Store
	events    eventstore.EventStore
	publisher EventPublisher
	rules     []riskrule.RiskRule

	orders     sync.Map // order id -> *model.Order, kept forever as history
	lastPrices sync.Map // symbol -> int64

	settleMu sync.RWMutex
	nowFn    func() time.Time
}

type Option func(*Exchange)

func WithPublisher(p EventPublisher) Option {
	return func(ex *Exchange) { ex.publisher = p }
}

func WithEventStore(s eventstore.EventStore) Option {
	return func(ex *Exchange) { ex.events = s }
}

func WithNowFunc(fn func() time.Time) Option {
	return func(ex *Exchange) { ex.nowFn = fn }
}

func New(cfgStore marketcfg.Store, opts ...Option) *Exchange {
	ex := &Exchange{
		ledger:    ledger.New(),
		books:     orderbook.NewManager(),
		ipo:       NewIPOPool(),
		cfgStore:  cfgStore,
		events:    eventstore.NewInMemoryEventStore(),
		publisher: noopPublisher{},
		rules: []riskrule.RiskRule{
			&riskrule.TradingWindowRule{},
			&riskrule.PriceBandRule{},
		},
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(ex)
	}
	return ex
}

func (ex *Exchange) Ledger() *ledger.Ledger { return ex.ledger }

func (ex *Exchange) CreateAccount(id string, points, shares int64) error {
	return ex.ledger.CreateAccount(id, points, shares)
}

func (ex *Exchange) GetBalance(id string) (ledger.Balance, error) {
	return ex.ledger.GetBalance(id)
}

func (ex *Exchange) IPOStatus() model.IPOStatus { return ex.ipo.Status() }

func (ex *Exchange) ResetIPO(_ context.Context, shares, price int64) (model.IPOStatus, error) {
	if err := ex.ipo.Reset(shares, price); err != nil {
		return model.IPOStatus{}, err
	}
	return ex.ipo.Status(), nil
}

func (ex *Exchange) UpdateIPO(_ context.Context, sharesRemaining, issuePrice *int64) (model.IPOStatus, error) {
	if err := ex.ipo.Update(sharesRemaining, issuePrice); err != nil {
		return model.IPOStatus{}, err
	}
	return ex.ipo.Status(), nil
}

// PlaceOrder validates, consumes IPO pool supply for buys, then runs
// one continuous matching turn. On a rejected remainder (market order
// exhausting liquidity or funds) the result still carries the fills
// already executed; those are final.
func (ex *Exchange) PlaceOrder(ctx context.Context, req *model.AddOrder) (*model.PlaceResult, error) {
	ex.settleMu.RLock()
	defer ex.settleMu.RUnlock()

	now := ex.nowFn()

	qty := req.Quantity.IntPart()
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Symbol == "" {
		return nil, ErrInvalidParameters
	}
	if req.Side != model.OrderSideBuy && req.Side != model.OrderSideSell {
		return nil, ErrInvalidParameters
	}

	price := req.Price.IntPart()
	switch req.Kind {
	case model.OrderKindLimit:
		if price <= 0 {
			return nil, ErrInvalidParameters
		}
		// price*qty must stay representable or balance arithmetic wraps
		if price > math.MaxInt64/qty {
			return nil, ErrInvalidParameters
		}
	case model.OrderKindMarket:
		price = 0
	default:
		return nil, ErrInvalidParameters
	}

	bal, err := ex.ledger.GetBalance(req.AccountID)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:   uuid.NewString(),
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Kind:      req.Kind,
		Price:     price,
		Quantity:  qty,
		Status:    model.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	cfg, err := ex.cfgStore.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load market config: %w", err)
	}
	for _, rule := range ex.rules {
		if err := rule.Check(cfg, order, now); err != nil {
			return nil, err
		}
	}

	// upfront checks; market buys are checked per fill instead since
	// their cost is unknown until matched
	if req.Side == model.OrderSideSell && bal.Shares < qty {
		return nil, ErrInsufficientBalance
	}
	if req.Side == model.OrderSideBuy && req.Kind == model.OrderKindLimit && bal.Points < price*qty {
		return nil, ErrInsufficientBalance
	}

	// auction regime: limit orders rest without crossing until the
	// admin triggers the sweep; market orders have no price to rest at
	if cfg.CallAuctionMode() {
		if req.Kind == model.OrderKindMarket {
			return nil, ErrInvalidParameters
		}
		ex.orders.Store(order.OrderID, order)
		if err := ex.books.Insert(&orderbook.Order{
			ID:        order.OrderID,
			AccountID: order.AccountID,
			Symbol:    order.Symbol,
			Side:      orderbook.Side(order.Side),
			Kind:      orderbook.OrderKind(order.Kind),
			Price:     price,
			Qty:       qty,
			Time:      now,
		}); err != nil {
			order.Cancel(model.CancelReasonSelfTrade, ex.nowFn())
			ex.emitOrderEvent(order)
			return &model.PlaceResult{Order: order}, err
		}
		ex.emitOrderEvent(order)
		return &model.PlaceResult{Order: order}, nil
	}

	ex.orders.Store(order.OrderID, order)
	res := &model.PlaceResult{Order: order}

	fundsLimited := false
	if req.Side == model.OrderSideBuy {
		var ipoFills []*model.TradeFill
		ipoFills, fundsLimited = ex.consumeIPO(ctx, order, now)
		res.Fills = append(res.Fills, ipoFills...)
	}

	var retErr error
	if order.Remaining() > 0 {
		bookOrder := &orderbook.Order{
			ID:        order.OrderID,
			AccountID: order.AccountID,
			Symbol:    order.Symbol,
			Side:      orderbook.Side(order.Side),
			Kind:      orderbook.OrderKind(order.Kind),
			Price:     price,
			Qty:       order.Remaining(),
			Time:      now,
		}

		settler := &tradeSettler{ex: ex, ctx: ctx}
		out, err := ex.books.Match(bookOrder, settler)
		res.Fills = append(res.Fills, settler.fills...)
		if err != nil {
			order.Cancel(model.CancelReasonSelfTrade, ex.nowFn())
			ex.emitOrderEvent(order)
			return res, err
		}

		switch {
		case out.Aborted:
			order.Cancel(model.CancelReasonInsolvency, ex.nowFn())
			retErr = ErrInsufficientBalance
		case order.Kind == model.OrderKindMarket && out.Remaining > 0:
			// a market order never rests; the unfilled remainder is
			// rejected, executed fills stand
			order.Cancel(model.CancelReasonNoLiquidity, ex.nowFn())
			retErr = ErrInsufficientLiquidity
			if fundsLimited {
				retErr = ErrInsufficientBalance
			}
		}
	}

	ex.emitOrderEvent(order)
	return res, retErr
}

// consumeIPO sells pool shares to a buy order at the issue price
// before it crosses the book. Returns the fills and whether the taken
// quantity was limited by the buyer's points rather than pool supply.
func (ex *Exchange) consumeIPO(ctx context.Context, order *model.Order, now time.Time) ([]*model.TradeFill, bool) {
	issuePrice, ok := ex.ipo.Quote(order.Price, order.Kind == model.OrderKindMarket)
	if !ok {
		return nil, false
	}

	bal, err := ex.ledger.GetBalance(order.AccountID)
	if err != nil {
		return nil, false
	}

	want := order.Remaining()
	afford := bal.Points / issuePrice
	take := min(want, afford)
	fundsLimited := afford < want
	if take == 0 {
		return nil, fundsLimited
	}

	taken, price := ex.ipo.Take(take)
	if taken == 0 {
		return nil, false
	}
	if err := ex.ledger.ApplyDelta(order.AccountID, -price*taken, taken); err != nil {
		// points were spent concurrently on another symbol
		ex.ipo.Restore(taken)
		return nil, true
	}

	order.ApplyFill(taken, now, false)
	fill := &model.TradeFill{
		FillID:       uuid.NewString(),
		Symbol:       order.Symbol,
		BuyOrderID:   order.OrderID,
		BuyAccountID: order.AccountID,
		Price:        price,
		Qty:          taken,
		CreatedAt:    now,
	}
	ex.recordFill(ctx, fill)
	return []*model.TradeFill{fill}, fundsLimited
}

// CancelOrder removes a resting order's remaining quantity from the
// book. Balances already moved by fills are untouched. Cancellation
// racing a final fill loses: the order reports not cancellable.
func (ex *Exchange) CancelOrder(_ context.Context, orderID string, reason model.CancelReason) (*model.Order, error) {
	ex.settleMu.RLock()
	defer ex.settleMu.RUnlock()

	order := ex.getOrder(orderID)
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.CanCancel() {
		return nil, ErrOrderNotCancellable
	}
	if reason == "" {
		reason = model.CancelReasonUser
	}

	if _, err := ex.books.Cancel(order.Symbol, orderID); err != nil {
		// lost the race against a fill that exhausted the order
		return nil, ErrOrderNotCancellable
	}

	order.Cancel(reason, ex.nowFn())
	ex.emitOrderEvent(order)

	cp := *order
	return &cp, nil
}

// GetOrder returns a copy of the order record, terminal or not.
func (ex *Exchange) GetOrder(orderID string) (*model.Order, error) {
	order := ex.getOrder(orderID)
	if order == nil {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

// OrderBookSnapshot returns the resting orders by side, best first.
func (ex *Exchange) OrderBookSnapshot(_ context.Context, symbol string) *model.BookSnapshot {
	bids, asks := ex.books.Snapshot(symbol)
	return &model.BookSnapshot{
		Symbol: symbol,
		Bids:   ex.toModelOrders(bids),
		Asks:   ex.toModelOrders(asks),
	}
}

// Fills returns recent trade history for a symbol, newest last.
func (ex *Exchange) Fills(symbol string, limit int) []*model.TradeFill {
	return ex.events.Fills(symbol, limit)
}

// MarketConfig exposes the config store for the admin surface.
func (ex *Exchange) MarketConfig(ctx context.Context) (*marketcfg.MarketConfig, error) {
	return ex.cfgStore.Get(ctx)
}

func (ex *Exchange) SetMarketConfig(ctx context.Context, cfg *marketcfg.MarketConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return ex.cfgStore.Set(ctx, cfg)
}

// tradeSettler moves balances for each prospective fill of one
// matching turn. It runs inside the book lock, so order records are
// updated before any cancel or snapshot can observe them.
type tradeSettler struct {
	ex    *Exchange
	ctx   context.Context
	fills []*model.TradeFill
}

func (s *tradeSettler) Settle(taker, maker *orderbook.Order, price, qty int64) orderbook.SettleOutcome {
	buy, sell := taker, maker
	if taker.Side == orderbook.SELL {
		buy, sell = maker, taker
	}

	if err := s.ex.ledger.Transfer(buy.AccountID, sell.AccountID, price*qty, qty); err != nil {
		if s.makerShort(maker, taker.Side, price, qty) {
			s.ex.cancelOrderRecord(maker.ID, model.CancelReasonInsolvency)
			return orderbook.SettleSkipMaker
		}
		return orderbook.SettleAbort
	}

	now := s.ex.nowFn()
	if mo := s.ex.getOrder(maker.ID); mo != nil {
		mo.ApplyFill(qty, now, true)
		s.ex.emitOrderEvent(mo)
	}
	if to := s.ex.getOrder(taker.ID); to != nil {
		to.ApplyFill(qty, now, false)
	}

	fill := &model.TradeFill{
		FillID:        uuid.NewString(),
		Symbol:        taker.Symbol,
		BuyOrderID:    buy.ID,
		SellOrderID:   sell.ID,
		BuyAccountID:  buy.AccountID,
		SellAccountID: sell.AccountID,
		Price:         price,
		Qty:           qty,
		CreatedAt:     now,
	}
	s.ex.recordFill(s.ctx, fill)
	s.fills = append(s.fills, fill)
	return orderbook.SettleOK
}

// makerShort reports whether the resting side caused the failed
// transfer: a selling maker without the shares, or a buying maker
// without the points.
func (s *tradeSettler) makerShort(maker *orderbook.Order, takerSide orderbook.Side, price, qty int64) bool {
	bal, err := s.ex.ledger.GetBalance(maker.AccountID)
	if err != nil {
		return true
	}
	if takerSide == orderbook.BUY {
		return bal.Shares < qty
	}
	return bal.Points < price*qty
}

func (ex *Exchange) getOrder(orderID string) *model.Order {
	if v, ok := ex.orders.Load(orderID); ok {
		return v.(*model.Order)
	}
	return nil
}

func (ex *Exchange) cancelOrderRecord(orderID string, reason model.CancelReason) {
	if o := ex.getOrder(orderID); o != nil && o.Cancel(reason, ex.nowFn()) {
		ex.emitOrderEvent(o)
	}
}

func (ex *Exchange) emitOrderEvent(o *model.Order) {
	ev := model.NewOrderEvent(*o, ex.nowFn())
	ex.events.AddEvent(ev)
	ex.publisher.PublishOrderEvent(ev)
}

func (ex *Exchange) recordFill(ctx context.Context, fill *model.TradeFill) {
	ex.events.AddFill(fill)
	ex.publisher.PublishFill(fill)
	ex.setLastPrice(ctx, fill.Symbol, fill.Price)
}

func (ex *Exchange) setLastPrice(ctx context.Context, symbol string, price int64) {
	ex.lastPrices.Store(symbol, price)
	if err := ex.cfgStore.SetLastTradePrice(ctx, symbol, price); err != nil {
		zap.S().Warnf("persist last trade price %s=%d fail: %v", symbol, price, err)
	}
}

// lastTradePrice reads the in-process value, falling back to the store
// after a restart. Zero means no trade has ever happened.
func (ex *Exchange) lastTradePrice(ctx context.Context, symbol string) int64 {
	if v, ok := ex.lastPrices.Load(symbol); ok {
		return v.(int64)
	}
	price, err := ex.cfgStore.LastTradePrice(ctx, symbol)
	if err != nil {
		return 0
	}
	return price
}

func (ex *Exchange) toModelOrders(bookOrders []*orderbook.Order) []*model.Order {
	out := make([]*model.Order, 0, len(bookOrders))
	for _, bo := range bookOrders {
		if o := ex.getOrder(bo.ID); o != nil {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}
