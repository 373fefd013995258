package repo

import (
	"context"

	"github.com/campstock/exchange/pkg/exchange/model"
)

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
	ByOrderID(ctx context.Context, orderID string) ([]*model.OrderEvent, error)
}

type ITradeFill interface {
	Create(ctx context.Context, record *model.TradeFill) (*model.TradeFill, error)
	BulkCreate(ctx context.Context, records []*model.TradeFill) ([]*model.TradeFill, error)
	BySymbol(ctx context.Context, symbol string, limit int) ([]*model.TradeFill, error)
}
