package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"crosspay_back/models"
)

const tradeColumns = `id, user_id, currency_pair, amount, rate, created_at`

type TradePostgres struct {
	db *sqlx.DB
}

func NewTradePostgres(db *sqlx.DB) *TradePostgres {
	return &TradePostgres{db: db}
}

func (r *TradePostgres) Create(ctx context.Context, trade models.Trade) (models.Trade, error) {
	var out models.Trade
	query := `
        INSERT INTO trades (user_id, currency_pair, amount, rate)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + tradeColumns
	err := r.db.GetContext(ctx, &out, query,
		trade.UserID,
		trade.CurrencyPair,
		trade.Amount,
		trade.Rate,
	)
	return out, classify(err, "trade not found")
}

func (r *TradePostgres) ListByUser(ctx context.Context, userID int64) ([]models.Trade, error) {
	trades := []models.Trade{}
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 ORDER BY created_at, id`
	err := r.db.SelectContext(ctx, &trades, query, userID)
	return trades, classify(err, "trade not found")
}
