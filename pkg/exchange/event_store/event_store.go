package eventstore

import "github.com/campstock/exchange/pkg/exchange/model"

// EventStore keeps the order event and trade fill history. Fills are
// immutable once added.
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	AddFill(fill *model.TradeFill)
	OrderEvents(orderID string) []*model.OrderEvent
	Fills(symbol string, limit int) []*model.TradeFill
}
