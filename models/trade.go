package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade — запись в журнале сделок: пара, объём и курс на момент сделки
type Trade struct {
	ID           int64           `db:"id" json:"id"`
	UserID       int64           `db:"user_id" json:"user_id"`
	CurrencyPair string          `db:"currency_pair" json:"currency_pair"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RecordTradeInput — курс опционален: нулевой берётся у источника курсов
type RecordTradeInput struct {
	CurrencyPair string          `json:"currency_pair" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Rate         decimal.Decimal `json:"rate"`
}
