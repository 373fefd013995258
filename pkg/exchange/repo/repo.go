package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	OrderEvent() IOrderEvent
	TradeFill() ITradeFill
}

type Repo struct {
	exchangeDB *gorm.DB
}

func NewRepo(exchangeDB *gorm.DB) IRepo {
	return &Repo{
		exchangeDB: exchangeDB,
	}
}

func (r *Repo) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(r.exchangeDB)
}

func (r *Repo) TradeFill() ITradeFill {
	return NewTradeFillSQLRepo(r.exchangeDB)
}
