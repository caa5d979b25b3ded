package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crosspay_back/models"
)

type Authorization interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
}

type Wallet interface {
	GetByUserID(ctx context.Context, userID int64) (models.Wallet, error)
	Create(ctx context.Context, wallet models.Wallet) (models.Wallet, error)
	GetOrCreate(ctx context.Context, wallet models.Wallet) (models.Wallet, error)
	AddFiat(ctx context.Context, userID int64, delta decimal.Decimal) (models.Wallet, error)
	ConvertToStablecoin(ctx context.Context, userID int64, fiatDelta, stableDelta decimal.Decimal) (models.Wallet, error)
	UpdateDisplayCurrency(ctx context.Context, userID int64, currency string) (models.Wallet, error)
}

type ChainWallet interface {
	Create(ctx context.Context, wallet models.ChainWallet) (models.ChainWallet, error)
	GetByID(ctx context.Context, id int64, scope models.Scope) (models.ChainWallet, error)
	ListByScope(ctx context.Context, scope models.Scope) ([]models.ChainWallet, error)
	SetActive(ctx context.Context, id int64, scope models.Scope, active bool) (models.ChainWallet, error)
}

type Trade interface {
	Create(ctx context.Context, trade models.Trade) (models.Trade, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Trade, error)
}

type Transaction interface {
	CreatePending(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetByIdemKey(ctx context.Context, key string) (models.Transaction, error)
	GetByHash(ctx context.Context, hash string) (models.Transaction, error)
	MarkSubmitted(ctx context.Context, id int64, hash string) (models.Transaction, error)
	SetStatusByHash(ctx context.Context, hash, status string) (models.Transaction, error)
	FailPending(ctx context.Context, id int64) error
	ListByWallet(ctx context.Context, walletID int64) ([]models.Transaction, error)
	ListStale(ctx context.Context, status string, olderThan time.Duration) ([]models.Transaction, error)
}

type Repository struct {
	Authorization
	Wallet
	ChainWallet
	Trade
	Transaction
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Authorization: NewAuthPostgres(db),
		Wallet:        NewWalletPostgres(db),
		ChainWallet:   NewChainWalletPostgres(db),
		Trade:         NewTradePostgres(db),
		Transaction:   NewTransactionPostgres(db),
	}
}
