package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campstock/exchange/pkg/exchange/model"
)

// OrderEventSQLRepo persists order lifecycle events. Inserts ignore
// duplicate event ids so JetStream redeliveries stay idempotent.
type OrderEventSQLRepo struct {
	db *gorm.DB
}

func NewOrderEventSQLRepo(db *gorm.DB) *OrderEventSQLRepo {
	return &OrderEventSQLRepo{db: db}
}

func (r *OrderEventSQLRepo) Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record).Error
	return record, err
}

func (r *OrderEventSQLRepo) BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(records).Error
	return records, err
}

// ByOrderID returns an order's full event trail, oldest first.
func (r *OrderEventSQLRepo) ByOrderID(ctx context.Context, orderID string) ([]*model.OrderEvent, error) {
	var events []*model.OrderEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp asc").
		Find(&events).Error
	return events, err
}
