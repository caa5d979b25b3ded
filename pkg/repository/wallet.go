package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
)

const walletColumns = `id, user_id, fiat_balance, stablecoin_balance, base_currency, display_currency, country_code, settings, created_at`

type WalletPostgres struct {
	db *sqlx.DB
}

func NewWalletPostgres(db *sqlx.DB) *WalletPostgres {
	return &WalletPostgres{db: db}
}

func (r *WalletPostgres) GetByUserID(ctx context.Context, userID int64) (models.Wallet, error) {
	var w models.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	err := r.db.GetContext(ctx, &w, query, userID)
	return w, classify(err, "wallet not found")
}

// Create — явное создание; вторая попытка для того же пользователя падает с Conflict
func (r *WalletPostgres) Create(ctx context.Context, wallet models.Wallet) (models.Wallet, error) {
	var w models.Wallet
	query := `
        INSERT INTO wallets (user_id, fiat_balance, stablecoin_balance, base_currency, display_currency, country_code, settings)
        VALUES ($1, 0, 0, $2, $3, $4, $5)
        RETURNING ` + walletColumns
	err := r.db.GetContext(ctx, &w, query,
		wallet.UserID,
		wallet.BaseCurrency,
		wallet.DisplayCurrency,
		wallet.CountryCode,
		wallet.Settings,
	)
	return w, classify(err, "wallet not found")
}

// GetOrCreate идемпотентен под гонкой: уникальный индекс по user_id решает,
// чья вставка победила, проигравший читает строку победителя
func (r *WalletPostgres) GetOrCreate(ctx context.Context, wallet models.Wallet) (models.Wallet, error) {
	var w models.Wallet
	query := `
        INSERT INTO wallets (user_id, fiat_balance, stablecoin_balance, base_currency, display_currency, country_code, settings)
        VALUES ($1, 0, 0, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING ` + walletColumns
	err := r.db.GetContext(ctx, &w, query,
		wallet.UserID,
		wallet.BaseCurrency,
		wallet.DisplayCurrency,
		wallet.CountryCode,
		wallet.Settings,
	)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return w, classify(err, "wallet not found")
	}
	return r.GetByUserID(ctx, wallet.UserID)
}

// AddFiat выполняет read-modify-write в serializable-транзакции;
// конфликт записи уходит наверх как StorageConflict и ретраится сервисом
func (r *WalletPostgres) AddFiat(ctx context.Context, userID int64, delta decimal.Decimal) (models.Wallet, error) {
	var w models.Wallet
	err := r.inSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID); err != nil {
			return err
		}
		w.FiatBalance = w.FiatBalance.Add(delta)
		return tx.GetContext(ctx, &w, `
            UPDATE wallets SET fiat_balance = $1 WHERE user_id = $2
            RETURNING `+walletColumns, w.FiatBalance, userID)
	})
	return w, classify(err, "wallet not found")
}

// ConvertToStablecoin атомарно списывает фиат и начисляет стейблкоин
func (r *WalletPostgres) ConvertToStablecoin(ctx context.Context, userID int64, fiatDelta, stableDelta decimal.Decimal) (models.Wallet, error) {
	var w models.Wallet
	err := r.inSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID); err != nil {
			return err
		}
		if w.FiatBalance.LessThan(fiatDelta) {
			return apperr.New(apperr.InvalidArgument, "insufficient fiat balance")
		}
		return tx.GetContext(ctx, &w, `
            UPDATE wallets
            SET fiat_balance = fiat_balance - $1, stablecoin_balance = stablecoin_balance + $2
            WHERE user_id = $3
            RETURNING `+walletColumns, fiatDelta, stableDelta, userID)
	})
	return w, classify(err, "wallet not found")
}

// UpdateDisplayCurrency не трогает балансы — display-валюта чисто презентационная
func (r *WalletPostgres) UpdateDisplayCurrency(ctx context.Context, userID int64, currency string) (models.Wallet, error) {
	var w models.Wallet
	query := `UPDATE wallets SET display_currency = $1 WHERE user_id = $2 RETURNING ` + walletColumns
	err := r.db.GetContext(ctx, &w, query, currency, userID)
	return w, classify(err, "wallet not found")
}

func (r *WalletPostgres) inSerializableTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
