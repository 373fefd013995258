package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campstock/exchange/pkg/exchange/model"
)

// TradeFillSQLRepo persists executed fills. Duplicate fill ids from
// redelivered messages are dropped on insert.
type TradeFillSQLRepo struct {
	db *gorm.DB
}

func NewTradeFillSQLRepo(db *gorm.DB) *TradeFillSQLRepo {
	return &TradeFillSQLRepo{db: db}
}

func (r *TradeFillSQLRepo) Create(ctx context.Context, record *model.TradeFill) (*model.TradeFill, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record).Error
	return record, err
}

func (r *TradeFillSQLRepo) BulkCreate(ctx context.Context, records []*model.TradeFill) ([]*model.TradeFill, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(records).Error
	return records, err
}

func (r *TradeFillSQLRepo) BySymbol(ctx context.Context, symbol string, limit int) ([]*model.TradeFill, error) {
	var fills []*model.TradeFill
	q := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return fills, q.Find(&fills).Error
}
