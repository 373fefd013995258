package orderbook

import (
	"container/heap"
	"math"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// orderBook keeps the resting orders of one symbol: a FIFO deque per
// price level plus a heap of level prices per side. Every order held
// here is live; terminal orders are removed eagerly.
type orderBook struct {
	symbol string

	buyOrders  map[int64]*deque.Deque[*Order]
	sellOrders map[int64]*deque.Deque[*Order]

	buyHeap  *PriceHeap
	sellHeap *PriceHeap

	orders map[string]*Order

	mu sync.Mutex
}

// MatchOutcome reports one continuous matching turn.
type MatchOutcome struct {
	Fills []Fill
	// DroppedMakerIDs are resting orders removed because their owner
	// could no longer pay or deliver when a fill was attempted.
	DroppedMakerIDs []string
	// Rested is true when a limit remainder was added to the book.
	Rested bool
	// Remaining is the incoming order's unfilled quantity.
	Remaining int64
	// Aborted is true when the turn stopped because the incoming
	// order's owner could not settle the next fill.
	Aborted bool
}

func newOrderBook(symbol string) *orderBook {
	return &orderBook{
		symbol:     symbol,
		buyOrders:  make(map[int64]*deque.Deque[*Order]),
		sellOrders: make(map[int64]*deque.Deque[*Order]),
		buyHeap:    NewPriceHeap(true),
		sellHeap:   NewPriceHeap(false),
		orders:     make(map[string]*Order),
	}
}

func (ob *orderBook) match(order *Order, settler Settler) (*MatchOutcome, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var counterBook map[int64]*deque.Deque[*Order]
	var counterHeap *PriceHeap
	var sideBook map[int64]*deque.Deque[*Order]
	var sideHeap *PriceHeap
	var crosses func(limit, counterPrice int64) bool

	if order.Side == BUY {
		sideBook, sideHeap = ob.buyOrders, ob.buyHeap
		counterBook, counterHeap = ob.sellOrders, ob.sellHeap
		crosses = func(limit, counterPrice int64) bool { return limit >= counterPrice }
	} else {
		sideBook, sideHeap = ob.sellOrders, ob.sellHeap
		counterBook, counterHeap = ob.buyOrders, ob.buyHeap
		crosses = func(limit, counterPrice int64) bool { return limit <= counterPrice }
	}

	limit := order.Price
	if order.Kind == MARKET {
		limit = math.MaxInt64
		if order.Side == SELL {
			limit = 0
		}
	}

	if ob.wouldSelfTrade(order, counterBook, counterHeap, crosses, limit) {
		return nil, ErrSelfTrade
	}

	out := &MatchOutcome{}

	for order.Qty > 0 {
		ob.compact(counterBook, counterHeap)
		bestPrice, ok := counterHeap.Peek()
		if !ok || !crosses(limit, bestPrice) {
			break
		}

		q := counterBook[bestPrice]
		maker := q.Front()

		matchQty := min(order.Qty, maker.Qty)
		switch settler.Settle(order, maker, bestPrice, matchQty) {
		case SettleSkipMaker:
			q.PopFront()
			delete(ob.orders, maker.ID)
			out.DroppedMakerIDs = append(out.DroppedMakerIDs, maker.ID)
			continue
		case SettleAbort:
			out.Aborted = true
		case SettleOK:
			order.Qty -= matchQty
			maker.Qty -= matchQty

			fill := Fill{Price: bestPrice, Qty: matchQty, At: time.Now()}
			if order.Side == BUY {
				fill.BuyOrderID, fill.SellOrderID = order.ID, maker.ID
			} else {
				fill.BuyOrderID, fill.SellOrderID = maker.ID, order.ID
			}
			out.Fills = append(out.Fills, fill)

			if maker.Qty == 0 {
				q.PopFront()
				delete(ob.orders, maker.ID)
			}
			continue
		}
		break
	}

	out.Remaining = order.Qty

	if order.Kind == LIMIT && order.Qty > 0 && !out.Aborted {
		ob.addToBook(sideBook, sideHeap, order)
		ob.orders[order.ID] = order
		out.Rested = true
	}

	return out, nil
}

// wouldSelfTrade reports whether any crossing resting order on the
// opposite side belongs to the incoming order's account. Checked
// before any fill so a rejected order has no partial effects.
func (ob *orderBook) wouldSelfTrade(order *Order, counterBook map[int64]*deque.Deque[*Order], counterHeap *PriceHeap, crosses func(int64, int64) bool, limit int64) bool {
	for _, price := range counterHeap.prices {
		if !crosses(limit, price) {
			continue
		}
		q := counterBook[price]
		if q == nil {
			continue
		}
		for i := 0; i < q.Len(); i++ {
			if q.At(i).AccountID == order.AccountID {
				return true
			}
		}
	}
	return false
}

// insert rests a limit order without attempting to cross it. Used by
// the call auction regime, where the book accumulates until a sweep.
// The self-trade check still applies: an order crossing the account's
// own resting order would pair with it at the sweep.
func (ob *orderBook) insert(order *Order) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	sideBook, sideHeap := ob.sellOrders, ob.sellHeap
	counterBook, counterHeap := ob.buyOrders, ob.buyHeap
	crosses := func(limit, counterPrice int64) bool { return limit <= counterPrice }
	if order.Side == BUY {
		sideBook, sideHeap = ob.buyOrders, ob.buyHeap
		counterBook, counterHeap = ob.sellOrders, ob.sellHeap
		crosses = func(limit, counterPrice int64) bool { return limit >= counterPrice }
	}
	if ob.wouldSelfTrade(order, counterBook, counterHeap, crosses, order.Price) {
		return ErrSelfTrade
	}
	ob.addToBook(sideBook, sideHeap, order)
	ob.orders[order.ID] = order
	return nil
}

func (ob *orderBook) cancel(orderID string) (*Order, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.removeLocked(orderID)
}

// applyFill reduces a resting order's remaining quantity, removing it
// from the book when fully filled. Used by the call auction executor.
func (ob *orderBook) applyFillLocked(orderID string, qty int64) error {
	o, ok := ob.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Qty -= qty
	if o.Qty <= 0 {
		_, err := ob.removeLocked(orderID)
		return err
	}
	return nil
}

func (ob *orderBook) removeLocked(orderID string) (*Order, error) {
	o, ok := ob.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(ob.orders, orderID)

	book := ob.sellOrders
	if o.Side == BUY {
		book = ob.buyOrders
	}
	q := book[o.Price]
	if q != nil {
		rebuilt := &deque.Deque[*Order]{}
		for i := 0; i < q.Len(); i++ {
			if cur := q.At(i); cur.ID != orderID {
				rebuilt.PushBack(cur)
			}
		}
		if rebuilt.Len() == 0 {
			delete(book, o.Price)
		} else {
			book[o.Price] = rebuilt
		}
	}
	return o, nil
}

func (ob *orderBook) bestBid() (int64, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.compact(ob.buyOrders, ob.buyHeap)
	return ob.buyHeap.Peek()
}

func (ob *orderBook) bestAsk() (int64, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.compact(ob.sellOrders, ob.sellHeap)
	return ob.sellHeap.Peek()
}

// snapshotLocked copies both sides in price-time priority order.
func (ob *orderBook) snapshotLocked() (bids, asks []*Order) {
	return ob.sideSnapshot(ob.buyOrders, func(i, j int64) bool { return i > j }),
		ob.sideSnapshot(ob.sellOrders, func(i, j int64) bool { return i < j })
}

func (ob *orderBook) sideSnapshot(book map[int64]*deque.Deque[*Order], better func(i, j int64) bool) []*Order {
	prices := make([]int64, 0, len(book))
	for p, q := range book {
		if q.Len() > 0 {
			prices = append(prices, p)
		}
	}
	for i := 1; i < len(prices); i++ {
		for j := i; j > 0 && better(prices[j], prices[j-1]); j-- {
			prices[j], prices[j-1] = prices[j-1], prices[j]
		}
	}

	var out []*Order
	for _, p := range prices {
		q := book[p]
		for i := 0; i < q.Len(); i++ {
			cp := *q.At(i)
			out = append(out, &cp)
		}
	}
	return out
}

// removeAllLocked empties the book and returns the removed orders.
func (ob *orderBook) removeAllLocked() []*Order {
	var removed []*Order
	for _, o := range ob.orders {
		removed = append(removed, o)
	}
	ob.buyOrders = make(map[int64]*deque.Deque[*Order])
	ob.sellOrders = make(map[int64]*deque.Deque[*Order])
	ob.buyHeap = NewPriceHeap(true)
	ob.sellHeap = NewPriceHeap(false)
	ob.orders = make(map[string]*Order)
	return removed
}

// compact pops heap entries whose price level is gone or empty.
func (ob *orderBook) compact(book map[int64]*deque.Deque[*Order], priceHeap *PriceHeap) {
	for {
		price, ok := priceHeap.Peek()
		if !ok {
			return
		}
		if q, exists := book[price]; exists && q.Len() > 0 {
			return
		}
		heap.Pop(priceHeap)
		delete(book, price)
	}
}

func (ob *orderBook) addToBook(book map[int64]*deque.Deque[*Order], priceHeap *PriceHeap, order *Order) {
	if book[order.Price] == nil {
		book[order.Price] = &deque.Deque[*Order]{}
	}
	heap.Push(priceHeap, order.Price)
	book[order.Price].PushBack(order)
}
