package service

import (
	"context"

	"github.com/shopspring/decimal"

	"crosspay_back/models"
	"crosspay_back/pkg/cache"
	"crosspay_back/pkg/chainclient"
	"crosspay_back/pkg/repository"
)

type Authorization interface {
	Login(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
}

type WalletLedger interface {
	Get(ctx context.Context, userID int64) (models.WalletView, error)
	Create(ctx context.Context, userID int64, input models.CreateWalletInput) (models.Wallet, error)
	Deposit(ctx context.Context, userID int64, input models.DepositInput) (models.Wallet, error)
	ConvertToStablecoin(ctx context.Context, userID int64, input models.ConvertInput) (models.Wallet, error)
	SetDisplayCurrency(ctx context.Context, userID int64, currency string) (models.WalletView, error)
}

type ChainWalletRegistry interface {
	CreateSingleKey(ctx context.Context, scope models.Scope, input models.CreateChainWalletInput) (models.CreatedChainWallet, error)
	CreateMultisig(ctx context.Context, scope models.Scope, input models.CreateMultisigInput) (models.ChainWallet, error)
	Get(ctx context.Context, id int64, scope models.Scope) (models.ChainWallet, error)
	List(ctx context.Context, scope models.Scope) ([]models.ChainWallet, error)
	SetActive(ctx context.Context, id int64, scope models.Scope, active bool) (models.ChainWallet, error)
}

type TradeLedger interface {
	Record(ctx context.Context, userID int64, input models.RecordTradeInput) (models.Trade, error)
	List(ctx context.Context, userID int64) ([]models.Trade, error)
}

type TransferCoordinator interface {
	Transfer(ctx context.Context, scope models.Scope, input models.TransferInput) (models.Transaction, error)
	Reconcile(ctx context.Context, txHash string) (models.Transaction, error)
	ListForWallet(ctx context.Context, walletID int64, scope models.Scope) ([]models.Transaction, error)
	Sweep(ctx context.Context) error
}

// RateSource — внешний источник курсов; курс не подменяется дефолтом при сбое
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// ChainNode — внешний узел подписи/брадкаста
type ChainNode interface {
	Broadcast(ctx context.Context, req chainclient.BroadcastRequest) (string, error)
	DeploySafe(ctx context.Context, req chainclient.DeployRequest) (address, txID string, err error)
	GetReceipt(ctx context.Context, txHash string) (chainclient.Receipt, error)
	FindByIdemKey(ctx context.Context, key string) (string, bool, error)
}

// Notifier уведомляет о подтверждённом переводе, сбой доставки не влияет на результат
type Notifier interface {
	TransferConfirmed(tx models.Transaction)
}

type Service struct {
	Authorization
	WalletLedger
	ChainWalletRegistry
	TradeLedger
	TransferCoordinator
}

func NewService(repos *repository.Repository, rates RateSource, node ChainNode, store *cache.IdempotencyStore, notifier Notifier) *Service {
	converter := NewConverter(rates)
	return &Service{
		Authorization:       NewAuthService(repos.Authorization),
		WalletLedger:        NewWalletService(repos.Wallet, converter, rates),
		ChainWalletRegistry: NewChainRegistryService(repos.ChainWallet, node),
		TradeLedger:         NewTradeService(repos.Trade, rates),
		TransferCoordinator: NewTransferService(repos.ChainWallet, repos.Transaction, node, store, notifier),
	}
}
